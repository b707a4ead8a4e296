package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"zipcaster/internal/codec"
	"zipcaster/internal/config"
	"zipcaster/internal/domain"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	OverviewFile = "overview.json"
	DetailedFile = "detailed.json"
)

// Payload is the raw input of one mode fetch.
type Payload struct {
	Overview []byte
	// Details holds one raw detail document per battle, newest first.
	Details [][]byte
	// Skipped counts details dropped because their id was already known.
	Skipped int
}

// Source supplies raw payloads for a mode. Details whose battle id is in
// existingIDs are left out; a negative limit means no limit.
type Source interface {
	Fetch(ctx context.Context, mode domain.Mode, existingIDs map[string]struct{}, limit int) (*Payload, error)
}

// Dir reads payloads saved by the scraping client under
// <root>/<mode>/overview.json and <root>/<mode>/detailed.json.
type Dir struct {
	root   string
	logger zerolog.Logger
}

func NewDir(root string, logger zerolog.Logger) *Dir {
	return &Dir{root: root, logger: logger}
}

func NewDirFromConfig(cfg *config.Config, logger zerolog.Logger) Source {
	return NewDir(cfg.RawDir, logger)
}

func (d *Dir) Fetch(ctx context.Context, mode domain.Mode, existingIDs map[string]struct{}, limit int) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(d.root, string(mode))
	overview, err := readOptional(filepath.Join(dir, OverviewFile))
	if err != nil {
		return nil, err
	}
	detailed, err := readOptional(filepath.Join(dir, DetailedFile))
	if err != nil {
		return nil, err
	}

	payload := &Payload{Overview: overview}
	if len(detailed) == 0 {
		d.logger.Debug().Str("mode", string(mode)).Msg("no raw details found")
		return payload, nil
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(detailed, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s for %s: %w", DetailedFile, mode, err)
	}

	for _, doc := range docs {
		if limit >= 0 && len(payload.Details) >= limit {
			break
		}
		if id, ok := detailBattleID(doc); ok {
			if _, seen := existingIDs[id]; seen {
				payload.Skipped++
				continue
			}
		}
		payload.Details = append(payload.Details, []byte(doc))
	}

	d.logger.Debug().
		Str("mode", string(mode)).
		Int("count", len(payload.Details)).
		Int("skipped", payload.Skipped).
		Msg("raw details loaded")

	return payload, nil
}

// detailBattleID reads the battle id of a raw detail without decoding the
// whole document. Undecodable ids are reported as unknown and left for the
// engine to reject.
func detailBattleID(doc []byte) (string, bool) {
	for _, path := range []string{"data.vsHistoryDetail.id", "vsHistoryDetail.id", "id"} {
		if r := gjson.GetBytes(doc, path); r.Type == gjson.String {
			id, err := codec.DecodeID(r.String(), codec.PrefixBattle)
			if err != nil {
				return "", false
			}
			return id, true
		}
	}
	return "", false
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
