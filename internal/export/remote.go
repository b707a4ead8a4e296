package export

import (
	"context"
	"encoding/json"
	"fmt"

	"zipcaster/internal/api"
	"zipcaster/internal/config"
	"zipcaster/internal/constants"
	"zipcaster/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"
)

// UploadNamespace derives stable upload idempotency keys from battle ids.
var UploadNamespace = uuid.MustParse("b3a2dbf5-2c09-4792-b78c-00b548b70aeb")

// Uploader is the subset of api.UploadClient the remote exporter needs.
type Uploader interface {
	RecentBattleIDs(ctx context.Context) ([]string, error)
	UploadBattle(ctx context.Context, idempotencyKey string, body []byte) (bool, error)
}

type RemoteExporter struct {
	client Uploader
	logger zerolog.Logger
}

func NewRemoteExporter(client Uploader, logger zerolog.Logger) *RemoteExporter {
	return &RemoteExporter{client: client, logger: logger}
}

func (e *RemoteExporter) Name() string { return config.ExporterRemote }

func IdempotencyKey(battleID string) string {
	return uuid.NewSHA1(UploadNamespace, []byte(battleID)).String()
}

// Export uploads every record the target does not list as recent. Records
// that fail to convert are logged and skipped; transport errors stop the
// export.
func (e *RemoteExporter) Export(ctx context.Context, records []domain.BattleRecord) error {
	if len(records) == 0 {
		return nil
	}

	recent, err := e.client.RecentBattleIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list uploaded battles: %w", err)
	}
	present := make(map[string]struct{}, len(recent))
	for _, id := range recent {
		present[id] = struct{}{}
	}

	var uploaded, skipped int
	for _, rec := range records {
		if _, ok := present[uploadID(rec.ID)]; ok {
			skipped++
			continue
		}

		body, err := uploadBody(rec)
		if err != nil {
			e.logger.Warn().Err(err).Str("battle_id", rec.ID).Msg("failed to convert battle for upload")
			continue
		}

		created, err := e.client.UploadBattle(ctx, IdempotencyKey(rec.ID), body)
		if err != nil {
			return fmt.Errorf("failed to upload battle %s: %w", rec.ID, err)
		}
		if !created {
			skipped++
			continue
		}
		uploaded++
	}

	e.logger.Info().
		Str("exporter", e.Name()).
		Int("count", uploaded).
		Int("skipped", skipped).
		Msg("battles uploaded")
	return nil
}

func uploadBody(rec domain.BattleRecord) ([]byte, error) {
	view, err := newUploadBattle(rec)
	if err != nil {
		return nil, err
	}
	battle, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload view: %w", err)
	}

	body, err := sjson.SetRawBytes([]byte(`{}`), "battle", battle)
	if err != nil {
		return nil, err
	}
	for _, f := range [...]struct{ path, value string }{
		{"data_type", "splashcat"},
		{"uploader_agent.name", constants.AppName},
		{"uploader_agent.version", constants.AppVersion},
		{"uploader_agent.extra", "exporter"},
	} {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

var _ Uploader = (*api.UploadClient)(nil)
