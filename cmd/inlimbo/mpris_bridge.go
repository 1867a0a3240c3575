package main

import (
	"github.com/inlimbo/core/internal/mpris"
	"github.com/inlimbo/core/internal/playback"
)

// mprisBridge wraps internal/mpris.Adapter, which is itself a
// build-tagged no-op off Linux; callers don't need to know which build
// they're running.
type mprisBridge struct {
	adapter *mpris.Adapter
}

func newMprisBridge(svc *playback.Service) (*mprisBridge, error) {
	adapter, err := mpris.New(svc)
	if err != nil {
		return nil, err
	}
	return &mprisBridge{adapter: adapter}, nil
}

func (b *mprisBridge) Close() error {
	return b.adapter.Close()
}
