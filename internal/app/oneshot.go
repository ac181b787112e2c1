package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/config"
	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/ledger"
)

const cliOwner = "cli"

func resolveOnce(cfg config.Config, envName string) (api.Environment, error) {
	if envName == "" {
		return cfg.CurrentEnvironment()
	}
	return cfg.ResolveEnvironment(envName)
}

// FetchOnce requests a single endpoint from the named environment (empty
// means the configured one) and returns the decoded value.
func FetchOnce(ctx context.Context, cfg config.Config, envName string, ep api.Endpoint) (any, error) {
	env, err := resolveOnce(cfg, envName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := api.NewLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(ctx)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	client, err := api.NewClient(env, loop)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	defer client.Close()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	client.Fetch(ep, cliOwner, func(value any, err error) {
		done <- result{value: value, err: err}
	})

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SyncOnce fetches contents and mirrors new sessions into the ledger,
// waiting for every scheduled upload to settle.
func SyncOnce(ctx context.Context, cfg config.Config, envName string) (ledger.Report, error) {
	if !cfg.SyncEnabled() {
		return ledger.Report{}, errors.New("no ledger url configured")
	}
	value, err := FetchOnce(ctx, cfg, envName, api.Contents)
	if err != nil {
		return ledger.Report{}, fmt.Errorf("fetch contents: %w", err)
	}
	contents, ok := value.(content.Contents)
	if !ok {
		return ledger.Report{}, fmt.Errorf("fetch contents: unexpected %T", value)
	}

	store, err := ledger.NewClient(cfg.Ledger.URL, nil)
	if err != nil {
		return ledger.Report{}, fmt.Errorf("init ledger client: %w", err)
	}
	syncer := ledger.NewSyncer(store,
		ledger.WithEvents(cfg.Ledger.Events),
		ledger.WithStagger(cfg.Ledger.Stagger),
	)
	defer syncer.Close()

	report := syncer.Run(ctx, contents)
	if report.Stage == ledger.StageSkipped {
		return report, fmt.Errorf("read ledger: %w", report.Err)
	}
	syncer.Wait()
	return syncer.Last(), nil
}
