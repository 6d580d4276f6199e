package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/alert"
	"github.com/arbitragex/arbfeed/internal/feed"
	"github.com/arbitragex/arbfeed/internal/storage"
	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/pkg/config"
	"github.com/arbitragex/arbfeed/pkg/healthprobe"
	"github.com/arbitragex/arbfeed/pkg/httpserver"
	"github.com/arbitragex/arbfeed/pkg/websocket"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	wsManager     *websocket.Manager
	engine        *feed.Engine
	notifier      *alert.Notifier
	oppStore      *store.Store
	sink          storage.Sink
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
