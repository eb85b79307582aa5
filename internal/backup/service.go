package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=backup_test

const DefaultFolderName = "fitcoach-backups"

type RemoteFile struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Uploader interface {
	// EnsureFolder returns the id of the named folder, creating it when missing.
	EnsureFolder(ctx context.Context, name string) (string, error)
	ListFiles(ctx context.Context, folderID string) ([]RemoteFile, error)
	Upload(ctx context.Context, folderID, name string, content []byte) (string, error)
}

// Source is the read side of the coaching store.
type Source interface {
	ListClients(ctx context.Context) ([]roster.ClientProfile, error)
	ListRecordsForClient(ctx context.Context, clientID string) ([]day.DayRecord, error)
	ListMessages(ctx context.Context, clientID string) ([]roster.Message, error)
}

// Snapshot is the content of one backup file.
type Snapshot struct {
	ExportedAt time.Time            `json:"exportedAt"`
	Profile    roster.ClientProfile `json:"profile"`
	Records    []day.DayRecord      `json:"records"`
	Messages   []roster.Message     `json:"messages"`
}

type Result struct {
	FolderID string
	Files    []string
}

type Service struct {
	source         Source
	uploader       Uploader
	folderName     string
	metricsManager *metrics.Manager
}

func NewService(source Source, uploader Uploader, folderName string, metricsManager *metrics.Manager) *Service {
	if folderName == "" {
		folderName = DefaultFolderName
	}
	return &Service{
		source:         source,
		uploader:       uploader,
		folderName:     folderName,
		metricsManager: metricsManager,
	}
}

// DoBackup writes one snapshot file per client into the backups folder.
// File names carry the base date; a name already present in the folder gets a numeric suffix.
func (s *Service) DoBackup(ctx context.Context, baseTime time.Time) (result Result, err error) {
	ctx, span := tracing.BackupTracer.Start(ctx, "backup.do")
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		s.metricsManager.CounterBackups.WithLabelValues(outcome).Inc()
		s.metricsManager.HistBackupDuration.Observe(time.Since(start).Seconds())
		tracing.EndSpanWithErrCheck(span, err)
	}()

	folderID, err := s.uploader.EnsureFolder(ctx, s.folderName)
	if err != nil {
		return Result{}, fmt.Errorf("ensure folder: %w", err)
	}
	result.FolderID = folderID

	existing, err := s.uploader.ListFiles(ctx, folderID)
	if err != nil {
		return result, fmt.Errorf("list backup files: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, f := range existing {
		taken[f.Name] = true
	}

	clients, err := s.source.ListClients(ctx)
	if err != nil {
		return result, fmt.Errorf("list clients: %w", err)
	}
	span.SetAttributes(attribute.Int("clients", len(clients)))

	for _, profile := range clients {
		snapshot, err := s.snapshot(ctx, profile, baseTime)
		if err != nil {
			return result, err
		}

		content, err := json.Marshal(snapshot)
		if err != nil {
			return result, fmt.Errorf("%s: marshal snapshot: %w", profile.ID, err)
		}

		name := FileName(profile.ID, baseTime, taken)
		fileID, err := s.uploader.Upload(ctx, folderID, name, content)
		if err != nil {
			return result, err
		}
		taken[name] = true
		result.Files = append(result.Files, name)

		log.Debugf("%s: backup file saved: %s (%d records)", name, fileID, len(snapshot.Records))
	}

	log.Printf("backup done, %d client files in folder %s", len(result.Files), folderID)
	return result, nil
}

func (s *Service) snapshot(ctx context.Context, profile roster.ClientProfile, baseTime time.Time) (Snapshot, error) {
	records, err := s.source.ListRecordsForClient(ctx, profile.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: list records: %w", profile.ID, err)
	}
	messages, err := s.source.ListMessages(ctx, profile.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: list messages: %w", profile.ID, err)
	}

	if records == nil {
		records = []day.DayRecord{}
	}
	if messages == nil {
		messages = []roster.Message{}
	}
	profile.Messages = nil

	return Snapshot{
		ExportedAt: baseTime.UTC(),
		Profile:    profile,
		Records:    records,
		Messages:   messages,
	}, nil
}

func FileName(clientID string, baseTime time.Time, taken map[string]bool) string {
	base := fmt.Sprintf("client-%s-%d-%d-%d", clientID, baseTime.Day(), baseTime.Month(), baseTime.Year())
	name := base + ".json"
	for counter := 2; taken[name]; counter++ {
		name = fmt.Sprintf("%s_%d.json", base, counter)
	}
	return name
}
