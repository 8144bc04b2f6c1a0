// Package dashboard is the NGO administrator's view: profile editing,
// image uploads and expense recording.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"ngoledger/internal/client"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// API is the admin side of the client.
type API interface {
	AdminNGO(ctx context.Context) (*domain.NGO, error)
	UpdateNGO(ctx context.Context, ngoID int64, update domain.NGOUpdate) (*domain.NGO, error)
	Outgoing(ctx context.Context, ngoID int64) ([]domain.Transaction, error)
	AddExpense(ctx context.Context, ngoID int64, in client.ExpenseInput) (*domain.Transaction, error)
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Target names the NGO field an uploaded image goes to.
type Target string

const (
	TargetLogo        Target = "logo"
	TargetCertificate Target = "certificate"
	TargetWork        Target = "work"
)

// ErrNotLoaded is returned by operations that need Load first.
var ErrNotLoaded = errors.New("dashboard: ngo not loaded")

// ErrNoUploader is returned by UploadImage when no image host is configured.
var ErrNoUploader = errors.New("dashboard: image uploads are not configured")

// ValidationError rejects input before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Options struct {
	API      API
	Uploader Uploader
	Logger   *infra.Logger
}

// Dashboard holds the loaded NGO and the editable draft of its profile.
type Dashboard struct {
	api      API
	uploader Uploader
	logger   *infra.Logger

	mu       sync.Mutex
	ngo      *domain.NGO
	draft    domain.NGOUpdate
	expenses []domain.Transaction
}

func New(opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Dashboard{api: opts.API, uploader: opts.Uploader, logger: logger}
}

// Load fetches the administered NGO and its expenses and resets the draft.
func (d *Dashboard) Load(ctx context.Context) (*domain.NGO, error) {
	ngo, err := d.api.AdminNGO(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := d.api.Outgoing(ctx, ngo.ID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ngo = ngo
	d.expenses = expenses
	d.draft = domain.NGOUpdate{
		Name:           ngo.Name,
		Description:    ngo.Description,
		LogoURL:        ngo.LogoURL,
		CertificateURL: ngo.CertificateURL,
		WorkImages:     append([]string{}, ngo.WorkImages...),
	}
	out := *ngo
	return &out, nil
}

// NGO returns the last loaded NGO, nil before Load.
func (d *Dashboard) NGO() *domain.NGO {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ngo == nil {
		return nil
	}
	out := *d.ngo
	return &out
}

func (d *Dashboard) Expenses() []domain.Transaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Transaction(nil), d.expenses...)
}

// Draft returns a copy of the pending profile edits.
func (d *Dashboard) Draft() domain.NGOUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.draft
	out.WorkImages = append([]string{}, d.draft.WorkImages...)
	return out
}

// Edit applies fn to the draft.
func (d *Dashboard) Edit(fn func(*domain.NGOUpdate)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.draft)
}

// AddImage appends a work image URL to the draft.
func (d *Dashboard) AddImage(u string) {
	d.Edit(func(up *domain.NGOUpdate) { up.WorkImages = append(up.WorkImages, u) })
}

// RemoveImage drops the work image at index i. Out of range is a no-op.
func (d *Dashboard) RemoveImage(i int) {
	d.Edit(func(up *domain.NGOUpdate) {
		if i < 0 || i >= len(up.WorkImages) {
			return
		}
		up.WorkImages = append(up.WorkImages[:i:i], up.WorkImages[i+1:]...)
	})
}

// Save sends the draft and reloads.
func (d *Dashboard) Save(ctx context.Context) (*domain.NGO, error) {
	id, err := d.loadedID()
	if err != nil {
		return nil, err
	}
	if _, err := d.api.UpdateNGO(ctx, id, d.Draft()); err != nil {
		return nil, err
	}
	d.logger.Info().Int64("ngo_id", id).Msg("dashboard: ngo updated")
	return d.Load(ctx)
}

// AddExpense records an expense and reloads.
func (d *Dashboard) AddExpense(ctx context.Context, in client.ExpenseInput) (*domain.Transaction, error) {
	if !domain.ValidAmount(in.Amount) {
		return nil, &ValidationError{Field: "amount", Message: "Please enter a valid amount"}
	}
	in.ProofURL = strings.TrimSpace(in.ProofURL)
	if u, err := url.Parse(in.ProofURL); in.ProofURL == "" || err != nil || u.Host == "" {
		return nil, &ValidationError{Field: "proof_url", Message: "A valid proof_url is required"}
	}
	id, err := d.loadedID()
	if err != nil {
		return nil, err
	}
	tx, err := d.api.AddExpense(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if _, err := d.Load(ctx); err != nil {
		return tx, fmt.Errorf("dashboard: reload after expense: %w", err)
	}
	return tx, nil
}

// UploadImage stores data through the image host and places the link in
// the draft field named by target.
func (d *Dashboard) UploadImage(ctx context.Context, target Target, name string, data []byte) (string, error) {
	switch target {
	case TargetLogo, TargetCertificate, TargetWork:
	default:
		return "", &ValidationError{Field: "target", Message: fmt.Sprintf("unknown image target %q", target)}
	}
	if d.uploader == nil {
		return "", ErrNoUploader
	}
	link, err := d.uploader.Upload(ctx, name, data)
	if err != nil {
		return "", err
	}
	d.Edit(func(up *domain.NGOUpdate) {
		switch target {
		case TargetLogo:
			up.LogoURL = link
		case TargetCertificate:
			up.CertificateURL = link
		case TargetWork:
			up.WorkImages = append(up.WorkImages, link)
		}
	})
	return link, nil
}

func (d *Dashboard) loadedID() (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ngo == nil {
		return 0, ErrNotLoaded
	}
	return d.ngo.ID, nil
}
