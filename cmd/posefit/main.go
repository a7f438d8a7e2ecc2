package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/adityapathak/posefit/internal/app"
	"github.com/adityapathak/posefit/internal/config"
	"github.com/adityapathak/posefit/internal/engine"
	"github.com/adityapathak/posefit/internal/server"
	"github.com/adityapathak/posefit/internal/store"
	"github.com/adityapathak/posefit/internal/tray"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	fmt.Println("PoseFit - Exercise Form Tracking")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Resume the exercise from the previous run if one was saved.
	exercise := cfg.Tracking.Exercise
	if saved, err := st.Settings().GetDefault(store.SettingActiveExercise, ""); err == nil && saved != "" {
		if _, ok := engine.LookupExercise(saved); ok {
			exercise = saved
		}
	}

	application := app.New(app.Config{
		Store:         st,
		CameraID:      cfg.Camera.DeviceID,
		ActiveFPS:     cfg.Camera.ActiveFPS,
		IdleFPS:       cfg.Camera.IdleFPS,
		IdleAfter:     cfg.Camera.IdleAfter,
		Exercise:      exercise,
		Window:        cfg.Tracking.Window,
		MinVisibility: cfg.Tracking.MinVisibility,
	})

	if err := application.LoadReferences(); err != nil {
		log.Printf("Failed to load stored references: %v", err)
	}
	if cfg.Tracking.References != "" {
		if err := mergeReferenceFile(application, cfg.Tracking.References); err != nil {
			log.Fatalf("Failed to load reference file %s: %v", cfg.Tracking.References, err)
		}
	}

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Source:    application.Source(),
		Tracker:   application,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start tracking pipeline: %v", err)
	}
	application.SetEnabled(true)

	ui := tray.New(application.Exercises(), application.ActiveExercise())
	application.SetPublisher(&trayPublisher{live: srv.Live(), ui: ui})

	ui.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
	})
	ui.OnExercise(func(name string) {
		if err := application.SetExercise(name); err != nil {
			log.Printf("Failed to switch exercise: %v", err)
			return
		}
		ui.SetProgress(0, 0)
	})
	ui.OnDashboard(func() {
		openBrowser(fmt.Sprintf("http://%s/", addr))
	})
	ui.OnQuit(func() {
		application.Stop()
	})

	// Blocks until Quit is chosen from the menu.
	ui.Run()
}

// trayPublisher fans frame results out to the WebSocket feed and the tray
// rep readout.
type trayPublisher struct {
	live *server.LiveHandler
	ui   *tray.Tray
}

func (p *trayPublisher) Publish(result engine.FrameResult) {
	p.live.Publish(result)
	p.ui.SetProgress(result.Reps, result.HoldSeconds)
}

// mergeReferenceFile layers calibrated ranges from a JSON file over the
// active reference set.
func mergeReferenceFile(application *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var set engine.RefSet
	if err := json.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("parsing reference file: %w", err)
	}
	return application.MergeReferences(set)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "posefit.yaml"
	}
	return filepath.Join(home, ".posefit", "posefit.yaml")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.posefit/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".posefit", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens url in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
