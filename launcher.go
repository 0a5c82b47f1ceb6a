package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/RichardKnop/machinery/v1"
	marchineryConfig "github.com/RichardKnop/machinery/v1/config"
	marchineryLog "github.com/RichardKnop/machinery/v1/log"
	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/Seklfreak/robyul-starboard/helpers"
	"github.com/Seklfreak/robyul-starboard/logging"
	"github.com/Seklfreak/robyul-starboard/metrics"
	"github.com/Seklfreak/robyul-starboard/modules"
	"github.com/Seklfreak/robyul-starboard/modules/plugins/starboard"
	"github.com/Seklfreak/robyul-starboard/rest"
	"github.com/Seklfreak/robyul-starboard/version"
	"github.com/bwmarrin/discordgo"
	"github.com/emicklei/go-restful"
	"github.com/getsentry/raven-go"
	"github.com/go-redis/redis"
	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

var (
	BotRuntimeChannel chan os.Signal
)

// Entrypoint
func main() {
	var err error

	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read config
	helpers.LoadConfig("config.json")
	config := helpers.GetConfig()

	// Check if the bot is being debugged
	if helpers.ConfigBool("debug") {
		helpers.DEBUG_MODE = true
	} else {
		log.Level = logrus.InfoLevel
	}

	if jsonFile := helpers.ConfigString("logging.jsonfile", ""); jsonFile != "" {
		fileHook, err := logging.NewLogrusFileHook(jsonFile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
		}
	}

	if discordWebhook := helpers.ConfigString("logging.discord_webhook", ""); discordWebhook != "" {
		log.Hooks.Add(discordrus.NewHook(
			discordWebhook,
			logrus.ErrorLevel,
			&discordrus.Opts{
				Username:           "Logging",
				DisableTimestamp:   false,
				TimestampFormat:    "Jan 2 15:04:05.00000",
				EnableCustomColors: true,
				CustomLevelColors: &discordrus.LevelColors{
					Error: 13631488,
					Panic: 13631488,
					Fatal: 13631488,
				},
			},
		))
	}

	log.WithField("module", "launcher").Info("Booting Robyul Starboard...")

	// Show version
	version.DumpInfo()

	// Start metric server
	metrics.Init(helpers.ConfigString("metrics_address", "localhost:1337"))

	// Call home
	if sentryDSN := helpers.ConfigString("sentry", ""); sentryDSN != "" {
		log.WithField("module", "launcher").Info("[SENTRY] Calling home...")
		err = raven.SetDSN(sentryDSN)
		if err != nil {
			panic(err)
		}
		if version.BOT_VERSION != "UNSET" {
			raven.SetRelease(version.BOT_VERSION)
		}
		log.WithField("module", "launcher").Info("[SENTRY] Someone picked up the phone \\^-^/")
	}

	// Connect to DB
	log.WithField("module", "launcher").Info("Opening database connection...")
	helpers.ConnectMDB(
		config.Path("mongodb.url").Data().(string),
		config.Path("mongodb.db").Data().(string),
	)
	// Close DB when main dies
	defer helpers.GetMDbSession().Close()

	// Connecting to redis
	log.WithField("module", "launcher").Info("Connecting to redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Path("redis.address").Data().(string),
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	cache.SetRedisClient(redisClient)

	// Launch machinery
	marchineryLog.Set(log.WithField("module", "machinery"))
	machineryServerConfig := &marchineryConfig.Config{
		Broker:          "redis://" + config.Path("redis.address").Data().(string) + "/1",
		DefaultQueue:    "robyul_starboard_tasks",
		ResultBackend:   "redis://" + config.Path("redis.address").Data().(string) + "/1",
		ResultsExpireIn: 3600,
	}
	machineryServer, err := machinery.NewServer(machineryServerConfig)
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		panic(err)
	}
	log.WithField("module", "launcher").Info("started machinery server, default queue: robyul_starboard_tasks")
	err = machineryServer.RegisterTasks(map[string]interface{}{
		starboard.ReviewExpiryTask: modules.Starboard.ExpireReviewTask,
		"log_error":                helpers.LogMachineryError,
	})
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		panic(err)
	}
	cache.SetMachineryServer(machineryServer)
	worker := machineryServer.NewWorker("robyul_starboard_worker_1", 1)
	go func() {
		err := worker.Launch()
		if err != nil {
			if !strings.Contains(err.Error(), "Signal received: interrupt") && !strings.Contains(err.Error(), "errorWorker quit gracefully") {
				raven.CaptureErrorAndWait(err, nil)
				panic(err)
			}
		}
	}()
	log.WithField("module", "launcher").Info("started machinery worker robyul_starboard_worker_1 with concurrency 1")

	// Connect and add event handlers
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		pc, file, line, _ := runtime.Caller(caller)

		files := strings.Split(file, "/")
		file = files[len(files)-1]

		name := runtime.FuncForPC(pc).Name()
		fns := strings.Split(name, ".")
		name = fns[len(fns)-1]

		msg := format
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(format, a...)
		}

		switch msgL {
		case discordgo.LogError:
			log.WithField("module", "discordgo").Errorf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogWarning:
			log.WithField("module", "discordgo").Warnf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogInformational:
			log.WithField("module", "discordgo").Infof("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogDebug:
			log.WithField("module", "discordgo").Debugf("%s:%d:%s() %s", file, line, name, msg)
		}
	}
	log.WithField("module", "launcher").Info("Connecting Robyul to discord...")
	discord, err := discordgo.New("Bot " + config.Path("discord.token").Data().(string))
	helpers.Relax(err)

	discord.Lock()
	discord.Debug = false
	discord.LogLevel = discordgo.LogInformational
	discord.StateEnabled = true
	discord.State.MaxMessageCount = 500
	discord.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent
	discord.Unlock()

	discord.AddHandler(BotOnReady)
	discord.AddHandler(BotOnReactionAdd)
	discord.AddHandler(BotOnReactionRemove)
	discord.AddHandler(BotOnInteractionCreate)

	// Connect to discord
	err = discord.Open()
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		panic(err)
	}

	// Open REST API
	wsContainer := restful.NewContainer()

	for _, service := range rest.NewRestServices(modules.Starboard.Engine) {
		wsContainer.Add(service)
	}
	wsContainer.Filter(func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		// Log request and time
		now := time.Now()
		chain.ProcessFilter(req, resp)
		tookTime := time.Now().Sub(now)
		log.WithField("module", "launcher").Info(fmt.Sprintf("received api request: %s %s%s (took %v)",
			req.Request.Method, req.Request.Host, req.Request.URL, tookTime))
	})

	restAddress := helpers.ConfigString("rest_address", "localhost:2021")
	go func() {
		server := &http.Server{Addr: restAddress, Handler: wsContainer}
		log.Fatal(server.ListenAndServe())
	}()
	log.WithField("module", "launcher").Info("REST API listening on " + restAddress)

	// Make a channel that waits for a os signal
	BotRuntimeChannel = make(chan os.Signal, 1)
	signal.Notify(BotRuntimeChannel, os.Interrupt, syscall.SIGTERM)

	// Wait until the os wants us to shutdown
	<-BotRuntimeChannel

	log.WithField("module", "launcher").Info("Robyul is stopping")
	log.WithField("module", "launcher").Info("Uninitializing plugins...")
	BotDestroy(discord)
	worker.Quit()
	log.WithField("module", "launcher").Info("Disconnecting bot discord session...")
	discord.Close()
}
