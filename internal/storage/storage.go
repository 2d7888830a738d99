// Package storage persists per-guild state in a single JSON datastore file:
// music settings, per-user recent searches and a short command log.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/datastore"

	"github.com/Maselkov/Toothy/internal/music/controller"
)

const (
	commandHistoryLimit = 20
	recentSearchLimit   = 12
)

type Storage struct {
	ds *datastore.DataStore
}

// CommandHistoryRecord is one logged command invocation.
type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	Music               controller.Settings    `json:"music"`
	MusicSet            bool                   `json:"music_set"`
	RecentSearches      map[string][]string    `json:"recent_searches"` // key = userID
}

func New(ctx context.Context, filePath string) (*Storage, error) {
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getGuildRecord loads a guild's record, handing back an empty one for
// guilds never seen before. Nothing is written until a setter runs.
func (s *Storage) getGuildRecord(guildID string) (*Record, error) {
	var record Record
	found, err := s.ds.Get(guildID, &record)
	if err != nil {
		return nil, fmt.Errorf("load guild record: %w", err)
	}
	if !found {
		record = Record{}
	}

	if record.RecentSearches == nil {
		record.RecentSearches = map[string][]string{}
	}
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *Record) error {
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("save guild record: %w", err)
	}
	return nil
}

// MusicSettings returns a guild's persisted music settings. A guild that
// never saved any gets the defaults.
func (s *Storage) MusicSettings(guildID string) (controller.Settings, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return controller.Settings{}, err
	}
	if !record.MusicSet {
		return controller.Settings{Volume: 0.15}, nil
	}
	return record.Music, nil
}

// SetMusicSettings replaces a guild's music settings.
func (s *Storage) SetMusicSettings(guildID string, settings controller.Settings) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Music = settings
	record.MusicSet = true
	return s.saveGuildRecord(guildID, record)
}

// AddRecentSearch remembers a user's search phrase for autocomplete. The
// newest entry goes first; duplicates move to the front.
func (s *Storage) AddRecentSearch(guildID, userID, query string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}

	searches := record.RecentSearches[userID]
	out := make([]string, 0, len(searches)+1)
	out = append(out, query)
	for _, q := range searches {
		if q != query {
			out = append(out, q)
		}
	}
	if len(out) > recentSearchLimit {
		out = out[:recentSearchLimit]
	}
	record.RecentSearches[userID] = out

	return s.saveGuildRecord(guildID, record)
}

// RecentSearches returns a user's remembered search phrases, newest first.
func (s *Storage) RecentSearches(guildID, userID string) ([]string, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.RecentSearches[userID], nil
}

// AppendCommandToHistory appends a command log entry for a guild.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	return s.saveGuildRecord(guildID, record)
}

// FetchCommandHistory returns the guild's recent command log.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
