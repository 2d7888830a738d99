package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand produces a deterministic digest of a command definition so
// registration can skip commands that did not change between runs.
func hashCommand(cmd *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(normalizeForHash(cmd))
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

// normalizeForHash drops runtime-only fields (IDs, versions) and sorts
// options so option order never forces a re-register.
func normalizeForHash(cmd *discordgo.ApplicationCommand) map[string]interface{} {
	obj := map[string]interface{}{
		"name":        cmd.Name,
		"description": cmd.Description,
		"type":        cmd.Type,
	}
	if len(cmd.Options) > 0 {
		obj["options"] = normalizeOptions(cmd.Options)
	}
	return obj
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	normalized := make([]map[string]interface{}, len(opts))

	for i, o := range opts {
		entry := map[string]interface{}{
			"name":         o.Name,
			"description":  o.Description,
			"type":         o.Type,
			"required":     o.Required,
			"autocomplete": o.Autocomplete,
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		normalized[i] = entry
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i]["name"].(string) < normalized[j]["name"].(string)
	})
	return normalized
}

func commandCachePath(guildID string) string {
	if guildID == "" {
		guildID = "global"
	}
	return filepath.Join("data", "commands", guildID+".json")
}

func loadCommandHashes(guildID string) map[string]string {
	hashes := make(map[string]string)
	if raw, err := os.ReadFile(commandCachePath(guildID)); err == nil {
		_ = json.Unmarshal(raw, &hashes)
	}
	return hashes
}

func saveCommandHashes(guildID string, hashes map[string]string) {
	path := commandCachePath(guildID)
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	data, _ := json.MarshalIndent(hashes, "", "  ")
	_ = os.WriteFile(path, data, 0644)
}
