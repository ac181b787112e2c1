package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/logging"
	"github.com/five82/sessiondeck/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	pollerOwner         = "poller"
)

// Fetcher is the part of api.Client the poller drives.
type Fetcher interface {
	FetchNews(owner string, fn func([]content.NewsItem, error))
	FetchFeaturedSections(owner string, fn func([]content.FeaturedSection, error))
	FetchContents(owner string, fn func(content.Contents, error))
	FetchVideos(owner string, fn func(content.VideoCatalog, error))
	FetchLiveVideoAssets(owner string, fn func(content.LiveAssets, error))
}

// Poller requests every endpoint on a fixed cadence and records the outcomes
// in the store. Callbacks run on the api dispatcher.
type Poller struct {
	fetcher  Fetcher
	store    *state.Store
	interval time.Duration
	log      zerolog.Logger
}

// NewPoller builds a poller; a non-positive interval uses the default.
func NewPoller(fetcher Fetcher, store *state.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		log:      logging.WithComponent("poller"),
	}
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Refresh()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Refresh requests all five endpoints. Cached endpoints answer from the
// cache; live assets always hit the network.
func (p *Poller) Refresh() {
	p.fetcher.FetchNews(pollerOwner, func(items []content.NewsItem, err error) {
		if err == nil {
			p.store.SetNews(items)
		}
		p.record(api.News, len(items), err)
	})
	p.fetcher.FetchFeaturedSections(pollerOwner, func(sections []content.FeaturedSection, err error) {
		p.record(api.FeaturedSections, len(sections), err)
	})
	p.fetcher.FetchContents(pollerOwner, func(c content.Contents, err error) {
		p.record(api.Contents, len(c.Sessions), err)
	})
	p.fetcher.FetchVideos(pollerOwner, func(v content.VideoCatalog, err error) {
		p.record(api.Videos, len(v.Sessions), err)
	})
	p.fetcher.FetchLiveVideoAssets(pollerOwner, func(live content.LiveAssets, err error) {
		p.record(api.LiveVideoAssets, len(live), err)
	})
}

func (p *Poller) record(ep api.Endpoint, items int, err error) {
	p.store.Record(ep, items, err)
	if err != nil {
		p.log.Warn().Err(err).Str(logging.FieldEndpoint, ep.String()).Msg("poll failed")
	}
}
