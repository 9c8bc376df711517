package app

import (
	"context"
	"log"
	"strings"

	"github.com/op/go-logging"

	"github.com/pasarfleet/p-ui/api"
	"github.com/pasarfleet/p-ui/config"
	"github.com/pasarfleet/p-ui/core"
	"github.com/pasarfleet/p-ui/cronjob"
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/node"
	"github.com/pasarfleet/p-ui/notification"
	"github.com/pasarfleet/p-ui/service"
	"github.com/pasarfleet/p-ui/telegram"
	"github.com/pasarfleet/p-ui/web"
)

type APP struct {
	service.SettingService

	nodeService  *service.NodeService
	coreService  *service.CoreService
	statsService *service.StatsService

	cores    *core.Manager
	pool     *node.Pool
	notifier *notification.Notifier

	webServer *web.Server
	cronJob   *cronjob.CronJob

	telegramConfig *telegram.Config
	botCancel      context.CancelFunc
	isBotStarted   bool
}

func NewApp() *APP {
	return &APP{}
}

func (a *APP) Init() error {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	a.initLog()

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		return err
	}

	a.initTelegramConfig()

	a.cores = core.NewManager()
	a.pool = node.NewPool(node.DefaultDialer())
	a.notifier = notification.NewNotifier()

	a.nodeService = service.NewNodeService(a.pool, a.cores, a.notifier)
	a.coreService = service.NewCoreService(a.cores, a.nodeService)
	a.statsService = service.NewStatsService(a.nodeService)

	err = a.coreService.LoadCores()
	if err != nil {
		return err
	}

	a.cronJob = cronjob.NewCronJob()
	a.webServer = web.NewServer(&api.ApiService{
		NodeService:  a.nodeService,
		CoreService:  a.coreService,
		StatsService: a.statsService,
	})

	return nil
}

func (a *APP) Start() error {
	loc, err := a.SettingService.GetTimeLocation()
	if err != nil {
		return err
	}

	err = a.cronJob.Start(loc, a.nodeService, a.statsService,
		a.SettingService.GetNodeCheckInterval(), a.SettingService.GetStatsAge())
	if err != nil {
		return err
	}

	err = a.webServer.Start()
	if err != nil {
		return err
	}

	if a.telegramConfig != nil && a.telegramConfig.Enabled && !a.isBotStarted {
		a.notifier.Register(&telegram.Sink{})
		ctx, cancel := context.WithCancel(context.Background())
		a.botCancel = cancel
		go telegram.Start(ctx, a.telegramConfig, a.fleetStatus)
		a.isBotStarted = true
	}

	go func() {
		err := a.nodeService.RestartAllNodes(context.Background(), 0, "startup")
		if err != nil {
			logger.Warning("startup node connect:", err)
		}
	}()

	return nil
}

func (a *APP) Stop() {
	a.cronJob.Stop()
	err := a.webServer.Stop()
	if err != nil {
		logger.Warning("stop web server:", err)
	}
	if a.isBotStarted {
		telegram.Stop()
		if a.botCancel != nil {
			a.botCancel()
		}
		a.isBotStarted = false
	}
	a.notifier.Stop()
	a.pool.Close()
}

func (a *APP) RestartApp() error {
	a.Stop()
	err := a.Init()
	if err != nil {
		return err
	}
	return a.Start()
}

func (a *APP) initLog() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func (a *APP) initTelegramConfig() {
	cfg, err := telegram.LoadConfig(config.GetTelegramConfigPath())
	if err != nil {
		logger.Warning("telegram config:", err)
		return
	}
	a.telegramConfig = cfg
}

// fleetStatus renders the /status summary for the bot.
func (a *APP) fleetStatus() string {
	nodes, _, err := a.nodeService.GetNodes(service.NodeFilter{})
	if err != nil {
		return "unable to fetch nodes: " + err.Error()
	}
	var b strings.Builder
	b.WriteString("📊 Fleet status\n")
	for _, n := range nodes {
		icon := "🔴"
		switch n.Status {
		case "connected":
			icon = "🟢"
		case "disabled":
			icon = "⚪"
		case "limited":
			icon = "🟡"
		}
		b.WriteString(icon + " " + n.Name + " (" + string(n.Status) + ")\n")
	}
	if len(nodes) == 0 {
		b.WriteString("no nodes registered\n")
	}
	return b.String()
}

func (a *APP) GetNodeService() *service.NodeService {
	return a.nodeService
}

func (a *APP) GetCoreService() *service.CoreService {
	return a.coreService
}
