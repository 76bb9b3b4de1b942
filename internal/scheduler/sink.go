package scheduler

import (
	"context"
	"errors"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

// ResultSink receives a solved timetable: exactly one Clear followed by one Commit per successful run
type ResultSink interface {
	Clear(ctx context.Context) error
	Commit(ctx context.Context, entries []model.ScheduleEntry) error
}

// Aborter is implemented by sinks able to undo a Clear whose Commit will never come
type Aborter interface {
	Abort(ctx context.Context) error
}

// Reverter is implemented by sinks able to undo their last successful Commit
type Reverter interface {
	Revert(ctx context.Context) error
}

// MultiSink fans a timetable out to several sinks in order. When one of them fails, the sinks before it are
// reverted and the ones after it aborted, so a transactional store is best placed last
type MultiSink []ResultSink

func (sinks MultiSink) Clear(ctx context.Context) error {
	for i, sink := range sinks {
		if err := sink.Clear(ctx); err != nil {
			return errors.Join(err, abort(ctx, sinks[:i]))
		}
	}
	return nil
}

func (sinks MultiSink) Commit(ctx context.Context, entries []model.ScheduleEntry) error {
	for i, sink := range sinks {
		if err := sink.Commit(ctx, entries); err != nil {
			return errors.Join(err, abort(ctx, sinks[i:]), revert(ctx, sinks[:i]))
		}
	}
	return nil
}

func (sinks MultiSink) Abort(ctx context.Context) error {
	return abort(ctx, sinks)
}

func abort(ctx context.Context, sinks []ResultSink) error {
	var errs []error
	for _, sink := range sinks {
		if aborter, ok := sink.(Aborter); ok {
			errs = append(errs, aborter.Abort(ctx))
		}
	}
	return errors.Join(errs...)
}

func revert(ctx context.Context, sinks []ResultSink) error {
	var errs []error
	for _, sink := range sinks {
		if reverter, ok := sink.(Reverter); ok {
			errs = append(errs, reverter.Revert(ctx))
		}
	}
	return errors.Join(errs...)
}
