package location

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
)

// Resolver answers coordinate lookups for the proximity tabs. The first
// successful fix is cached for the rest of the session; failures are
// never cached, so the next request tries the source again. Concurrent
// callers share a single in-flight query.
type Resolver struct {
	source Source
	logger *zap.Logger
	opts   QueryOptions

	mutex  sync.Mutex
	cached *models.GeoCoordinate
	group  singleflight.Group
}

// NewResolver creates a resolver over the given source. A zero Timeout
// in opts selects the default policy.
func NewResolver(source Source, logger *zap.Logger, opts QueryOptions) *Resolver {
	if opts.Timeout == 0 {
		opts = DefaultQueryOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		logger: logger,
		opts:   opts,
	}
}

// Resolve returns the session coordinate, querying the source at most
// once no matter how many callers arrive together. Joined callers ride
// on the first caller's context.
func (r *Resolver) Resolve(ctx context.Context) (models.GeoCoordinate, error) {
	r.mutex.Lock()
	if r.cached != nil {
		coord := *r.cached
		r.mutex.Unlock()
		return coord, nil
	}
	r.mutex.Unlock()

	v, err, _ := r.group.Do("resolve", func() (interface{}, error) {
		if r.source == nil || !r.source.Available() {
			return nil, errors.ErrLocationUnsupported
		}

		coord, err := r.source.Current(ctx, r.opts)
		if err != nil {
			classified := Classify(err)
			classified.Log(r.logger)
			return nil, classified
		}

		r.mutex.Lock()
		r.cached = &coord
		r.mutex.Unlock()

		r.logger.Debug("location resolved",
			zap.Float64("lat", coord.Lat),
			zap.Float64("lng", coord.Lng))
		return coord, nil
	})
	if err != nil {
		return models.GeoCoordinate{}, err
	}
	return v.(models.GeoCoordinate), nil
}

// Cached returns the session coordinate without querying the source.
func (r *Resolver) Cached() (models.GeoCoordinate, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.cached == nil {
		return models.GeoCoordinate{}, false
	}
	return *r.cached, true
}

// Invalidate drops the cached coordinate so the next Resolve queries the
// source again.
func (r *Resolver) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.cached = nil
}

// Classify maps an arbitrary source failure onto the location error
// taxonomy. Errors already carrying a location type pass through
// unchanged.
func Classify(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Type == errors.ErrTypeLocation {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrLocationTimeout.WithInternal(err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.ErrLocationUnknown.WithInternal(err)
	}
	return errors.ErrLocationUnavailable.WithInternal(err)
}
