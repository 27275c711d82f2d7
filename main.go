package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"canvas-earth/blob"
	"canvas-earth/canvas"
	"canvas-earth/handlers/api/objects"
	"canvas-earth/handlers/api/users"
	"canvas-earth/handlers/ws"
	"canvas-earth/hub"
	authMiddleware "canvas-earth/middleware"
	"canvas-earth/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(service *canvas.Service, store stores.Store, blobStore blob.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(authMiddleware.Identity)

	r.Route("/api/objects", func(r chi.Router) {
		r.Get("/", objects.HandleViewport(service))
		r.Post("/", objects.HandleCreate(service))
		r.Post("/upload", objects.HandleUpload(service))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", objects.HandleGet(service))
			r.Put("/", objects.HandleUpdate(service))
			r.Delete("/", objects.HandleDelete(service))
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", users.HandleRegister(store))
		r.Get("/{id}", users.HandleGet(store))
	})

	// Locally stored uploads are served straight from the blob directory.
	if fs, ok := blobStore.(interface{ BasePath() string }); ok {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(fs.BasePath())))
		r.Get("/uploads/*", uploads.ServeHTTP)
	}

	return r
}

func waitForShutdown(ioo *socketio.Server, h *hub.Hub) {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	h.Close()
	ioo.Close(nil)
	logrus.Info("Shutting down...")
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":8080", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore()
	blobStore := blob.GetStore()
	eventHub := hub.New()
	service := canvas.NewService(store, store, blobStore, eventHub)

	r := setupRouter(service, store, blobStore)

	ioo := ws.SetupSocketIO(eventHub)
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo, eventHub)
}
