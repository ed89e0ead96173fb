package jobs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"fevergolang/internal/config"
	"fevergolang/internal/model"
	"fevergolang/internal/printer"
	"fevergolang/internal/spool"
	"fevergolang/internal/store"
)

var (
	// ErrJobNotFound re-exports the store sentinel for callers of this package.
	ErrJobNotFound = store.ErrJobNotFound
	// ErrForbidden marks a reprint of a job owned by someone else.
	ErrForbidden = errors.New("print owned by another user")
)

const printIDLength = 10

// Orchestrator runs the print workflow: resolve configuration, render through
// the shared printer, persist the artifact, record the audit entry.
type Orchestrator struct {
	Config  *config.Store
	Store   *store.Store
	Spool   spool.Spool
	Printer *printer.Printer
}

// View is the API-facing shape of an audit record, with the timestamp
// localised to the configured timezone.
type View struct {
	Username  string `json:"username"`
	PrintID   string `json:"printId"`
	PrintType string `json:"printType"`
	Tags      string `json:"tags"`
	CreatedAt string `json:"createdAt"`
}

func layoutFrom(set config.Settings) printer.Layout {
	return printer.Layout{
		NumLinefeeds: set.NumLinefeeds,
		PrintHeader:  set.PrintHeader,
		PrintDivider: set.PrintDivider,
		DividerChar:  set.DividerChar,
		TextColumns:  set.TextColumns,
		ImageWidth:   set.ImageWidth,
	}
}

// PrintText renders a text job and records it. No audit entry is written for
// a job whose rendering failed.
func (o *Orchestrator) PrintText(ctx context.Context, username, text, tags string) (string, error) {
	set, err := config.ExtractSettings(o.Config)
	if err != nil {
		return "", err
	}
	printID := store.GeneratePrintID(printIDLength)

	if err := o.Printer.PrintText(layoutFrom(set), printID, username, text); err != nil {
		return "", err
	}
	path, err := o.Spool.SaveText(printID, text)
	if err != nil {
		return "", fmt.Errorf("persist artifact: %w", err)
	}
	return printID, o.record(ctx, printID, username, model.PrintTypeText, path, tags)
}

// PrintImage renders an image job and records it.
func (o *Orchestrator) PrintImage(ctx context.Context, username string, img image.Image, tags string) (string, error) {
	set, err := config.ExtractSettings(o.Config)
	if err != nil {
		return "", err
	}
	printID := store.GeneratePrintID(printIDLength)

	if err := o.Printer.PrintImage(layoutFrom(set), printID, username, img); err != nil {
		return "", err
	}
	path, err := o.Spool.SaveImage(printID, img)
	if err != nil {
		return "", fmt.Errorf("persist artifact: %w", err)
	}
	return printID, o.record(ctx, printID, username, model.PrintTypeImage, path, tags)
}

// Reprint reissues a prior job under the current formatting rules. The
// original record is found by the requested id; the reissue always gets a
// fresh id and its own audit entry.
func (o *Orchestrator) Reprint(ctx context.Context, username, printID string) (string, error) {
	orig, err := o.Store.GetPrint(ctx, printID)
	if err != nil {
		return "", err
	}
	if orig.Username != username {
		return "", fmt.Errorf("%w: %s", ErrForbidden, printID)
	}

	set, err := config.ExtractSettings(o.Config)
	if err != nil {
		return "", err
	}
	newID := store.GeneratePrintID(printIDLength)

	switch orig.Type {
	case model.PrintTypeText:
		text, err := o.Spool.ReadText(orig.ArtifactPath)
		if err != nil {
			return "", err
		}
		if err := o.Printer.PrintText(layoutFrom(set), newID, username, text); err != nil {
			return "", err
		}
	case model.PrintTypeImage:
		img, err := o.Spool.ReadImage(orig.ArtifactPath)
		if err != nil {
			return "", err
		}
		if err := o.Printer.PrintImage(layoutFrom(set), newID, username, img); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("reprint %s: unknown print type", printID)
	}

	return newID, o.record(ctx, newID, orig.Username, orig.Type, orig.ArtifactPath, orig.Tags)
}

func (o *Orchestrator) record(ctx context.Context, printID, username string, t model.PrintType, artifactPath, tags string) error {
	return o.Store.InsertPrint(ctx, model.PrintJob{
		ID:           printID,
		Username:     username,
		Type:         t,
		ArtifactPath: artifactPath,
		Tags:         tags,
		CreatedAt:    time.Now().UTC(),
	})
}

// Get returns the API view of one audit record.
func (o *Orchestrator) Get(ctx context.Context, printID string) (View, error) {
	set, err := config.ExtractSettings(o.Config)
	if err != nil {
		return View{}, err
	}
	job, err := o.Store.GetPrint(ctx, printID)
	if err != nil {
		return View{}, err
	}
	return viewOf(job, set.Timezone), nil
}

// List returns up to limit records, most recent first.
func (o *Orchestrator) List(ctx context.Context, limit int) ([]View, error) {
	set, err := config.ExtractSettings(o.Config)
	if err != nil {
		return nil, err
	}
	records, err := o.Store.ListPrints(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(records))
	for _, job := range records {
		views = append(views, viewOf(job, set.Timezone))
	}
	return views, nil
}

func viewOf(job model.PrintJob, tz *time.Location) View {
	return View{
		Username:  job.Username,
		PrintID:   job.ID,
		PrintType: job.Type.String(),
		Tags:      job.Tags,
		CreatedAt: job.CreatedAt.In(tz).Format(time.RFC3339),
	}
}
