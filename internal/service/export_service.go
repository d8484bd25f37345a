package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	"github.com/noah-isme/oratoria-api/pkg/export"
	"github.com/noah-isme/oratoria-api/pkg/history"
	"github.com/noah-isme/oratoria-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	Exists(filename string) bool
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type favoriteLister interface {
	ListIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// Export table columns.
const (
	colDate       = "Fecha"
	colFile       = "Archivo"
	colEmotion    = "Emoción dominante"
	colConfidence = "Confianza"
	colScore      = "Puntaje"
	colLevel      = "Nivel"
)

var exportHeaders = []string{colDate, colFile, colEmotion, colConfidence, colScore, colLevel}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	Location  *time.Location
	Bands     emotion.Bands
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
	Rows         int
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	History   historyProvider
	Favorites favoriteLister
	Storage   fileStorage
	Signer    *storage.SignedURLSigner
	Logger    *zap.Logger
	Config    ExportConfig
}

// ExportService renders presentation histories and persists the files.
type ExportService struct {
	history   historyProvider
	favorites favoriteLister
	storage   fileStorage
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	now       func() time.Time
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = emotion.FiveLevelBands
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		history:   params.History,
		favorites: params.Favorites,
		storage:   params.Storage,
		signer:    params.Signer,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Generate loads the history named by job, renders it and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob, token string) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, err := export.RendererFor(export.Format(job.Format))
	if err != nil {
		return nil, err
	}
	principal := models.Principal{UserID: job.CreatedBy, Token: token}
	records, err := s.history.History(ctx, principal, job.Params.UserID)
	if err != nil {
		return nil, err
	}
	dataset, rows, err := s.buildDataset(ctx, job, records)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("historial_%s_%s.%s", s.now().In(s.cfg.Location).Format("20060102"), job.ID, renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	signed, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        signed,
		URL:          fmt.Sprintf("%s/export/%s", prefix, signed),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
		Rows:         rows,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Exists reports whether the export file is still on disk.
func (s *ExportService) Exists(relPath string) bool {
	return s.storage.Exists(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup purges files older than ttl.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob, records []history.Record) (export.Dataset, int, error) {
	params := job.Params
	periodLabel := "Todo el historial"
	if params.Period != "" {
		var start, end time.Time
		if params.Start != nil {
			start = *params.Start
		}
		if params.End != nil {
			end = *params.End
		}
		window, err := history.ResolveWindow(history.Period(params.Period), s.now(), start, end, s.cfg.Location)
		if err != nil {
			return export.Dataset{}, 0, err
		}
		records = filterRecords(records, window.Contains)
		periodLabel = fmt.Sprintf("%s a %s", window.Start.Format(history.DateLayout), window.End.Format(history.DateLayout))
	}
	if params.Emotion != "" {
		want := emotion.Normalize(params.Emotion)
		records = filterRecords(records, nil, func(r history.Record) bool { return r.Dominant() == want })
	}
	if params.Favorites && s.favorites != nil {
		ids, err := s.favorites.ListIDs(ctx, params.UserID)
		if err != nil {
			return export.Dataset{}, 0, err
		}
		records = filterRecords(records, nil, func(r history.Record) bool {
			_, ok := ids[r.ID]
			return ok
		})
	}
	records = history.SortByCreatedAt(records)

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		raw := emotion.RawScore(rec.Input())
		_, named := placeOnBands(s.cfg.Bands, raw)
		key := rec.Dominant()
		rows = append(rows, map[string]string{
			colDate:       rec.CreatedAt.In(s.cfg.Location).Format("2006-01-02 15:04"),
			colFile:       rec.Filename,
			colEmotion:    key.Label(),
			colConfidence: fmt.Sprintf("%d%%", int(emotion.RoundHalfUp(rec.Confidence*100))),
			colScore:      fmt.Sprintf("%.1f", emotion.DisplayScore(rec.Input())),
			colLevel:      named.Name,
		})
	}

	top := history.TopEmotionWithTiebreak(records)
	summary := []export.SummaryField{
		{Label: "Usuario", Value: params.UserID},
		{Label: "Periodo", Value: periodLabel},
		{Label: "Presentaciones", Value: fmt.Sprintf("%d", len(records))},
		{Label: "Puntaje promedio", Value: fmt.Sprintf("%.1f%%", emotion.Percentage(history.Mean(history.RawScores(records))))},
		{Label: "Emoción más frecuente", Value: top.Label},
		{Label: "Generado", Value: s.now().In(s.cfg.Location).Format("2006-01-02 15:04")},
	}
	return export.Dataset{
		Title:   "Historial de presentaciones",
		Summary: summary,
		Headers: exportHeaders,
		Rows:    rows,
	}, len(rows), nil
}

// filterRecords keeps records whose CreatedAt passes inTime (when set) and
// that satisfy every predicate.
func filterRecords(records []history.Record, inTime func(time.Time) bool, preds ...func(history.Record) bool) []history.Record {
	out := make([]history.Record, 0, len(records))
next:
	for _, rec := range records {
		if inTime != nil && !inTime(rec.CreatedAt) {
			continue
		}
		for _, pred := range preds {
			if !pred(rec) {
				continue next
			}
		}
		out = append(out, rec)
	}
	return out
}
