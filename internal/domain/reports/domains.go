package reports

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"assetdesk/internal/domain/filter"
	"assetdesk/pkg/logger"
)

// lookupConcurrency bounds the backend lookups one Domains call runs at once.
const lookupConcurrency = 4

// Domains resolves the option lists of every select, multiselect and
// property_value field of a report. A failing lookup falls back to the
// field's static domain so one broken endpoint does not blank the whole form.
// Lookups run concurrently; distinct domains share one row sample.
func (s *Service) Domains(ctx context.Context, reportID string) (map[string][]filter.Option, error) {
	def, err := s.GetDefinition(reportID)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]filter.Option)
	var mu sync.Mutex
	var sample *distinctSample
	set := func(key string, opts []filter.Option) {
		if opts == nil {
			opts = []filter.Option{}
		}
		mu.Lock()
		out[key] = opts
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(lookupConcurrency)

	for _, f := range def.Fields {
		switch f.Type {
		case filter.TypePropertyValue:
			set(f.Key, options(f.Properties...))

		case filter.TypeSelect, filter.TypeMultiSelect:
			spec := def.Domains[f.Key]
			switch {
			case spec.Lookup != "":
				eg.Go(func() error {
					opts, err := s.lookupOptions(egCtx, spec)
					if err != nil {
						logger.Warn(ctx, "domain lookup failed", "report_id", def.ID, "field", f.Key, "lookup", spec.Lookup, "error", err)
						opts = f.Domain
					}
					set(f.Key, opts)
					return nil
				})
			case spec.Distinct:
				if sample == nil {
					sample = &distinctSample{}
				}
				opts, err := s.distinctOptions(ctx, def, f.Key, sample)
				if err != nil {
					logger.Warn(ctx, "distinct domain failed", "report_id", def.ID, "field", f.Key, "error", err)
					opts = f.Domain
				}
				set(f.Key, opts)
			default:
				set(f.Key, f.Domain)
			}
		}
	}

	_ = eg.Wait()
	return out, nil
}

// domainScope keys cached domains by the branches the caller can see, since
// lookups run with the caller's token and distinct values come from rows
// already restricted to those branches.
func domainScope(ctx context.Context) string {
	allowed := allowedBranches(ctx)
	if allowed == nil {
		return "all"
	}
	branches := make([]string, 0, len(allowed))
	for b := range allowed {
		branches = append(branches, b)
	}
	slices.Sort(branches)
	return "branches=" + strings.Join(branches, ",")
}

func (s *Service) lookupOptions(ctx context.Context, spec DomainSpec) ([]filter.Option, error) {
	key := "lookup:" + spec.Lookup + ":" + strconv.FormatBool(spec.ByName) + ":" + domainScope(ctx)
	if opts, ok := s.cache.GetOptions(ctx, key); ok {
		return opts, nil
	}

	records, err := s.source.Lookup(ctx, spec.Lookup)
	if err != nil {
		return nil, err
	}

	opts := make([]filter.Option, 0, len(records))
	for _, rec := range records {
		label := refText(rec)
		if label == "" {
			continue
		}
		value := refID(rec)
		if spec.ByName || value == "" {
			value = label
		}
		opts = append(opts, filter.Option{Value: value, Label: label})
	}

	s.cache.SetOptions(ctx, key, opts)
	return opts, nil
}

// distinctSample holds the rows fetched once per Domains call.
type distinctSample struct {
	rows []filter.Row
	err  error
	done bool
}

func (s *Service) distinctOptions(ctx context.Context, def Definition, field string, sample *distinctSample) ([]filter.Option, error) {
	key := fmt.Sprintf("distinct:%s:%s:%s", def.ID, field, domainScope(ctx))
	if opts, ok := s.cache.GetOptions(ctx, key); ok {
		return opts, nil
	}

	if !sample.done {
		sample.done = true
		params := url.Values{}
		params.Set("limit", strconv.Itoa(s.maxRows))
		records, err := s.source.Fetch(ctx, def.Source, params)
		if err != nil {
			sample.err = err
		} else {
			if len(records) > s.maxRows {
				records = records[:s.maxRows]
			}
			sample.rows = s.shape(ctx, def, records)
		}
	}
	if sample.err != nil {
		return nil, sample.err
	}

	opts := distinctValues(sample.rows, field)
	s.cache.SetOptions(ctx, key, opts)
	return opts, nil
}
