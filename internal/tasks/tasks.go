package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// PortalAPI is the subset of the backend client used by composite loads and downloads.
type PortalAPI interface {
	MemberTracks(ctx context.Context) ([]models.Track, error)
	Licenses(ctx context.Context) ([]models.License, error)
	Invoices(ctx context.Context) ([]models.Invoice, error)
	Payments(ctx context.Context) ([]models.Payment, error)
	Members(ctx context.Context) ([]models.Member, error)
	Licensees(ctx context.Context) ([]models.Licensee, error)
	Tracks(ctx context.Context) ([]models.Track, error)
	AdminLicenses(ctx context.Context) ([]models.License, error)
	AdminInvoices(ctx context.Context) ([]models.Invoice, error)
	AdminPayments(ctx context.Context) ([]models.Payment, error)
	Genres(ctx context.Context) ([]models.Lookup, error)
	Languages(ctx context.Context) ([]models.Lookup, error)
	Countries(ctx context.Context) ([]models.Lookup, error)
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

// Loader runs composite loads against the backend.
type Loader struct {
	api PortalAPI
}

// NewLoader creates a new Loader.
func NewLoader(api PortalAPI) *Loader {
	return &Loader{api: api}
}

// Section names.
const (
	SectionTracks    = "tracks"
	SectionLicenses  = "licenses"
	SectionInvoices  = "invoices"
	SectionPayments  = "payments"
	SectionMembers   = "members"
	SectionLicensees = "licensees"
	SectionGenres    = "genres"
	SectionLanguages = "languages"
	SectionCountries = "countries"
)

// Section summarizes one list of a composite load.
type Section struct {
	Name  string
	Count int
	Err   error
}

// Dashboard is the role home: every list the role can see.
type Dashboard struct {
	Role      models.Role
	Tracks    []models.Track
	Licenses  []models.License
	Invoices  []models.Invoice
	Payments  []models.Payment
	Members   []models.Member
	Licensees []models.Licensee

	Sections []Section
}

// Failed returns the sections whose fetch failed.
func (d *Dashboard) Failed() []Section {
	out := []Section{}
	for _, s := range d.Sections {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Lookups is the reference data used by forms.
type Lookups struct {
	Genres    []models.Lookup
	Languages []models.Lookup
	Countries []models.Lookup

	Sections []Section
}

// fanout runs named fetches concurrently and records each outcome in declaration order.
type fanout struct {
	phase    Phase
	progress chan<- ProgressUpdate

	wg       sync.WaitGroup
	mu       sync.Mutex
	done     int
	sections []Section
}

func newFanout(phase Phase, progress chan<- ProgressUpdate, names ...string) *fanout {
	f := &fanout{phase: phase, progress: progress, sections: make([]Section, len(names))}
	for i, name := range names {
		f.sections[i].Name = name
	}
	return f
}

func (f *fanout) record(i, count int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.done++
	f.sections[i].Count = count
	f.sections[i].Err = err

	if err != nil {
		sendProgress(f.progress, sectionFailedUpdate(f.phase, f.done, len(f.sections), f.sections[i].Name, err))
	} else {
		sendProgress(f.progress, sectionLoadedUpdate(f.phase, f.done, len(f.sections), f.sections[i].Name, count))
	}
}

// fetch starts fn in a goroutine. On failure dst is set to an empty list.
func fetch[T any](ctx context.Context, f *fanout, i int, dst *[]T, fn func(context.Context) ([]T, error)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		items, err := fn(ctx)
		if err != nil || items == nil {
			items = []T{}
		}
		*dst = items
		f.record(i, len(items), err)
	}()
}

func (f *fanout) wait() []Section {
	f.wg.Wait()
	return f.sections
}

// Dashboard loads every list visible to role concurrently.
func (l *Loader) Dashboard(ctx context.Context, role models.Role, progress chan<- ProgressUpdate) (*Dashboard, error) {
	d := &Dashboard{Role: role}

	switch role {
	case models.RoleMember:
		f := newFanout(LoadDashboard, progress, SectionTracks)
		fetch(ctx, f, 0, &d.Tracks, l.api.MemberTracks)
		d.Sections = f.wait()

	case models.RoleLicensee:
		f := newFanout(LoadDashboard, progress, SectionLicenses, SectionInvoices, SectionPayments)
		fetch(ctx, f, 0, &d.Licenses, l.api.Licenses)
		fetch(ctx, f, 1, &d.Invoices, l.api.Invoices)
		fetch(ctx, f, 2, &d.Payments, l.api.Payments)
		d.Sections = f.wait()

	case models.RoleAdmin:
		f := newFanout(LoadDashboard, progress,
			SectionMembers, SectionLicensees, SectionTracks, SectionLicenses, SectionInvoices, SectionPayments)
		fetch(ctx, f, 0, &d.Members, l.api.Members)
		fetch(ctx, f, 1, &d.Licensees, l.api.Licensees)
		fetch(ctx, f, 2, &d.Tracks, l.api.Tracks)
		fetch(ctx, f, 3, &d.Licenses, l.api.AdminLicenses)
		fetch(ctx, f, 4, &d.Invoices, l.api.AdminInvoices)
		fetch(ctx, f, 5, &d.Payments, l.api.AdminPayments)
		d.Sections = f.wait()

	default:
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}

	return d, nil
}

// Lookups loads genres, languages and countries concurrently. Each defaults to empty on failure.
func (l *Loader) Lookups(ctx context.Context, progress chan<- ProgressUpdate) *Lookups {
	out := &Lookups{}
	f := newFanout(LoadLookups, progress, SectionGenres, SectionLanguages, SectionCountries)
	fetch(ctx, f, 0, &out.Genres, l.api.Genres)
	fetch(ctx, f, 1, &out.Languages, l.api.Languages)
	fetch(ctx, f, 2, &out.Countries, l.api.Countries)
	out.Sections = f.wait()
	return out
}
