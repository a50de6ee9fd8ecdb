package core

// pipeline.go is the request-scoped orchestrator. A request moves through
// decode → normalize → [aggregate] → bind → pack and either yields a
// complete archive or fails atomically with the stage that broke; no
// partial archive is ever returned.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docgen/internal/decode"
	"docgen/internal/docx"
	"docgen/internal/schema"
)

// Mode selects how records map to documents.
type Mode string

const (
	// ModeIndividual produces one document per source row.
	ModeIndividual Mode = "individual"

	// ModeAggregated produces one document per importer, with rows merged
	// per the schema merge rules.
	ModeAggregated Mode = "aggregated"
)

// ParseMode validates a caller-supplied mode selector.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndividual, ModeAggregated:
		return Mode(s), nil
	default:
		return "", &InputError{Kind: InputBadMode, Detail: s}
	}
}

// Input is the byte stream and metadata handed over by the transport layer.
type Input struct {
	Filename    string
	ContentType string
	Data        []byte
	Mode        Mode
}

// Archive is the finished response payload. It is never persisted; the
// caller owns it only for the duration of the response.
type Archive struct {
	Filename  string
	Data      []byte
	Documents int
}

// Limits bound the input a single request may submit.
type Limits struct {
	MaxFileSize int64
	MaxRows     int
}

// Service runs the document generation pipeline. The template and schema
// are fixed at construction and shared read-only across requests; all other
// state is request-scoped, so concurrent requests never interact.
type Service struct {
	tpl             *docx.Template
	fields          []schema.Field
	limits          Limits
	bindConcurrency int
}

// NewService creates a Service over a loaded template. It verifies up
// front that every template placeholder resolves to a schema field, so a
// misconfigured deployment fails at startup instead of on first request.
func NewService(tpl *docx.Template, fields []schema.Field, limits Limits, bindConcurrency int) (*Service, error) {
	if bindConcurrency < 1 {
		bindConcurrency = 1
	}
	for _, token := range tpl.Placeholders() {
		if _, ok := schema.Lookup(fields, token); !ok {
			return nil, &BindError{Kind: UnknownPlaceholder, Token: token}
		}
	}
	return &Service{
		tpl:             tpl,
		fields:          fields,
		limits:          limits,
		bindConcurrency: bindConcurrency,
	}, nil
}

// Generate executes the whole pipeline for one request.
func (s *Service) Generate(ctx context.Context, in Input) (Archive, error) {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID, "mode", in.Mode, "file", in.Filename)
	start := time.Now()

	records, err := s.parse(ctx, in)
	if err != nil {
		logger.Warn("generation failed", "error", err)
		return Archive{}, err
	}

	if in.Mode == ModeAggregated {
		before := len(records)
		records = Aggregate(records, s.fields)
		logger.Debug("aggregated records", "rows", before, "groups", len(records))
	}

	docs, err := s.bindAll(ctx, records)
	if err != nil {
		logger.Warn("generation failed", "error", err)
		return Archive{}, err
	}

	data, err := Pack(docs)
	if err != nil {
		logger.Warn("generation failed", "error", err)
		return Archive{}, &StageError{Stage: StagePack, Err: err}
	}

	logger.Info("archive generated",
		"documents", len(docs),
		"bytes", len(data),
		"elapsed", time.Since(start),
	)
	return Archive{
		Filename:  string(in.Mode) + "_documents.zip",
		Data:      data,
		Documents: len(docs),
	}, nil
}

// Preview decodes and normalizes the input without generating documents,
// returning each record's formatted field values in schema order.
func (s *Service) Preview(ctx context.Context, in Input) ([]map[string]string, error) {
	records, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, len(records))
	for i, rec := range records {
		view := make(map[string]string, len(s.fields))
		for _, f := range s.fields {
			view[f.Name] = FieldText(rec, f)
		}
		out[i] = view
	}
	return out, nil
}

// parse runs the input checks plus the decode and normalize stages.
func (s *Service) parse(ctx context.Context, in Input) ([]Record, error) {
	if err := s.checkInput(in); err != nil {
		return nil, &StageError{Stage: StageInput, Err: err}
	}

	format := decode.DetectFormat(in.Filename, in.ContentType)
	if format == decode.FormatUnknown {
		return nil, &StageError{Stage: StageInput, Err: &InputError{Kind: InputUnsupportedType, Detail: in.Filename}}
	}

	rows, err := decode.Decode(in.Data, format)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}
	if s.limits.MaxRows > 0 && len(rows) > s.limits.MaxRows {
		return nil, &StageError{
			Stage: StageInput,
			Err:   &InputError{Kind: InputTooManyRows, Detail: fmt.Sprintf("%d rows, limit %d", len(rows), s.limits.MaxRows)},
		}
	}

	records, err := NormalizeAll(rows, s.fields)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}
	return records, nil
}

func (s *Service) checkInput(in Input) error {
	if len(in.Data) == 0 {
		return &InputError{Kind: InputEmpty}
	}
	if s.limits.MaxFileSize > 0 && int64(len(in.Data)) > s.limits.MaxFileSize {
		return &InputError{
			Kind:   InputTooLarge,
			Detail: fmt.Sprintf("%d bytes, limit %d", len(in.Data), s.limits.MaxFileSize),
		}
	}
	return nil
}

// bindAll renders one document per record. Binding runs on a bounded
// worker group because each render rewrites a full document container; the
// results slice is indexed by record position, so the archive keeps source
// order no matter which bind finishes first. Cancelling the request
// context abandons the remaining work.
func (s *Service) bindAll(ctx context.Context, records []Record) ([]GeneratedDocument, error) {
	filenames := Filenames(records)
	docs := make([]GeneratedDocument, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bindConcurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Bind(rec, s.tpl, filenames[i])
			if err != nil {
				return &StageError{Stage: StageBind, Err: err}
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
