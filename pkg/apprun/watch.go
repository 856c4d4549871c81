package apprun

import (
	"context"

	"github.com/yndnr/apprun-go/internal/infra/confloader"
	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

// WatchConfig calls fn with a freshly loaded tree each time the config
// file read during preparation changes. The stored options are left alone;
// the application decides what to apply. The watch ends when ctx is done
// or stop is called.
func (a *App) WatchConfig(ctx context.Context, fn func(conftree.Tree, error)) (stop func() error, err error) {
	path := a.ConfigPath()
	if path == "" {
		return nil, ErrNoConfigFile
	}

	w, err := confloader.NewWatcher(path, confloader.WithWatcherLogger(logger.Slog(a.Logger())))
	if err != nil {
		return nil, err
	}
	w.OnChange(func(changed string) {
		fresh := conftree.New()
		_, err := a.loader.Load(fresh, changed)
		fn(fresh, err)
	})
	w.StartAsync(ctx)
	return w.Stop, nil
}
