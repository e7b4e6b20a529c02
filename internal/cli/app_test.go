package cli

import (
	"testing"

	"valutahub/config"
	"valutahub/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	return NewApp(cfg, logger.Logger())
}

func TestSourcesAll(t *testing.T) {
	app := newTestApp(t)
	sources, err := app.Sources("")
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
}

func TestSourcesFilter(t *testing.T) {
	app := newTestApp(t)

	sources, err := app.Sources("coingecko")
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(sources) != 1 || sources[0].Name() != "CoinGecko" {
		t.Errorf("unexpected sources: %v", sources)
	}

	sources, err = app.Sources("ExchangeRate-API")
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(sources) != 1 || sources[0].Name() != "ExchangeRate-API" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestSourcesUnknown(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.Sources("binance"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
