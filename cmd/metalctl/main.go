// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command metalctl is the local-first МеталлМастер client. Every
// command works against the local cache first and pushes changes to
// the API server in the background; when the server is unreachable the
// command still succeeds with whatever the cache holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/metalmaster-go/internal/config"
	"github.com/olegiv/metalmaster-go/internal/engine"
	"github.com/olegiv/metalmaster-go/internal/imaging"
	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
	"github.com/olegiv/metalmaster-go/internal/remote"
	"github.com/olegiv/metalmaster-go/internal/version"
)

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, "metalctl - МеталлМастер storefront client\n\n")
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <command> [arguments]\n\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "Commands:\n")
	_, _ = fmt.Fprintf(os.Stderr, "  status                         Show current user, theme and cache state\n")
	_, _ = fmt.Fprintf(os.Stderr, "  register <name> <email> <password> [phone]\n")
	_, _ = fmt.Fprintf(os.Stderr, "  login <email> <password>\n")
	_, _ = fmt.Fprintf(os.Stderr, "  logout\n")
	_, _ = fmt.Fprintf(os.Stderr, "  products [category]            List catalog (doors|fences|forged|all)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  add-product <name> <category> <price> <description> [image...]\n")
	_, _ = fmt.Fprintf(os.Stderr, "  delete-product <id>\n")
	_, _ = fmt.Fprintf(os.Stderr, "  orders                         List contact requests (admin)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  submit-contact <name> <phone> <message>\n")
	_, _ = fmt.Fprintf(os.Stderr, "  set-status <id> <status>       new|processing|completed (admin)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  settings                       Show site settings\n")
	_, _ = fmt.Fprintf(os.Stderr, "  theme [dark|light|toggle]\n")
	_, _ = fmt.Fprintf(os.Stderr, "  seed                           Create default accounts if missing\n")
	_, _ = fmt.Fprintf(os.Stderr, "  sync                           Push local data to the server now\n")
	_, _ = fmt.Fprintf(os.Stderr, "  watch                          Sync periodically per MM_SYNC_SCHEDULE\n")
	_, _ = fmt.Fprintf(os.Stderr, "  version\n")
	_, _ = fmt.Fprintf(os.Stderr, "\nConfiguration comes from MM_* environment variables; see metalmaster -help.\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		_, _ = fmt.Printf("metalctl %s (commit: %s, built: %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if err := run(args[0], args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "metalctl: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	cache, err := localcache.OpenSQLite(cfg.CachePath, cfg.CacheCapacity)
	if err != nil {
		return fmt.Errorf("opening local cache: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Error("closing local cache", "error", err)
		}
	}()

	var client *remote.Client
	if !cfg.Offline {
		client = remote.New(cfg.APIBaseURL, nil)
	}

	eng := engine.New(engine.Config{
		Cache:          cache,
		Client:         client,
		Processor:      imaging.NewProcessor(imaging.DefaultOptions(), logger),
		Logger:         logger,
		RootEmail:      cfg.RootEmail,
		Offline:        cfg.Offline,
		QuotaThreshold: cfg.QuotaThreshold,
	})

	ctx := context.Background()
	if err := eng.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	// Background pushes finish before the process exits.
	defer eng.WaitSync()

	switch cmd {
	case "status":
		return cmdStatus(ctx, eng, cache)
	case "register":
		return cmdRegister(ctx, eng, args)
	case "login":
		return cmdLogin(ctx, eng, args)
	case "logout":
		return eng.Logout(ctx)
	case "products":
		return cmdProducts(eng, args)
	case "add-product":
		return cmdAddProduct(ctx, eng, args)
	case "delete-product":
		return cmdDeleteProduct(ctx, eng, args)
	case "orders":
		return cmdOrders(eng)
	case "submit-contact":
		return cmdSubmitContact(ctx, eng, args)
	case "set-status":
		return cmdSetStatus(ctx, eng, args)
	case "settings":
		return cmdSettings(eng)
	case "theme":
		return cmdTheme(ctx, eng, args)
	case "seed":
		return cmdSeed(ctx, eng)
	case "sync":
		return eng.SyncNow(ctx)
	case "watch":
		return cmdWatch(ctx, eng, cfg, logger)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdStatus(ctx context.Context, eng *engine.Engine, cache localcache.Cache) error {
	if u, ok := eng.CurrentUser(); ok {
		fmt.Printf("Logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)
	} else {
		fmt.Println("Not logged in")
	}
	fmt.Printf("Theme: %s\n", eng.Theme())

	data := eng.Snapshot()
	fmt.Printf("Products: %d, users: %d, contacts: %d\n",
		len(data.Products), len(data.Users), len(data.Contacts))

	size, err := cache.TotalSize(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Cache size: %d bytes\n", size)
	return nil
}

func cmdRegister(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: register <name> <email> <password> [phone]")
	}
	input := engine.RegisterInput{Name: args[0], Email: args[1], Password: args[2]}
	if len(args) > 3 {
		input.Phone = args[3]
	}
	u, err := eng.Register(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func cmdLogin(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	u, err := eng.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func cmdProducts(eng *engine.Engine, args []string) error {
	category := "all"
	if len(args) > 0 {
		category = args[0]
	}
	products := eng.ProductsByCategory(category)
	if len(products) == 0 {
		fmt.Println("No products")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\timages: %d\n",
			p.ID, p.Name, model.CategoryName(p.Category),
			model.FormatPrice(p.Price), model.FormatDate(p.DateAdded), len(p.Images))
	}
	return nil
}

func cmdAddProduct(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: add-product <name> <category> <price> <description> [image...]")
	}
	price, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", args[2])
	}

	var files []imaging.File
	var toClose []*os.File
	defer func() {
		for _, f := range toClose {
			_ = f.Close()
		}
	}()
	for _, path := range args[4:] {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening image: %w", err)
		}
		toClose = append(toClose, f)
		files = append(files, imaging.File{Name: f.Name(), Reader: f})
	}

	p, err := eng.CreateProduct(ctx, engine.CreateProductInput{
		Name:        args[0],
		Category:    args[1],
		Price:       price,
		Description: args[3],
		Files:       files,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added product %d: %s (%s)\n", p.ID, p.Name, model.FormatPrice(p.Price))
	return nil
}

func cmdDeleteProduct(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-product <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	if err := eng.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted product %d\n", id)
	return nil
}

func cmdOrders(eng *engine.Engine) error {
	contacts := eng.Contacts()
	if len(contacts) == 0 {
		fmt.Println("No contact requests")
		return nil
	}
	for _, c := range contacts {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Phone, c.Status, model.FormatDate(c.Date))
	}
	return nil
}

func cmdSubmitContact(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: submit-contact <name> <phone> <message>")
	}
	c, err := eng.SubmitContact(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("Request %s submitted\n", c.ID)
	return nil
}

func cmdSetStatus(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set-status <id> <status>")
	}
	c, err := eng.UpdateOrderStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Request %s is now %s\n", c.ID, c.Status)
	return nil
}

func cmdSettings(eng *engine.Engine) error {
	s := eng.Settings()
	fmt.Printf("Site name:    %s\n", s.SiteName)
	fmt.Printf("Description:  %s\n", s.SiteDescription)
	fmt.Printf("Phone:        %s\n", s.ContactPhone)
	fmt.Printf("Email:        %s\n", s.ContactEmail)
	fmt.Printf("Address:      %s\n", s.ContactAddress)
	return nil
}

func cmdTheme(ctx context.Context, eng *engine.Engine, args []string) error {
	if len(args) == 0 {
		fmt.Println(eng.Theme())
		return nil
	}
	switch args[0] {
	case "toggle":
		theme, err := eng.ToggleTheme(ctx)
		if err != nil {
			return err
		}
		fmt.Println(theme)
		return nil
	default:
		if err := eng.SetTheme(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println(args[0])
		return nil
	}
}

func cmdSeed(ctx context.Context, eng *engine.Engine) error {
	added, err := eng.SeedDefaultUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d account(s)\n", added)
	return nil
}

// cmdWatch syncs on the configured cron schedule until interrupted.
func cmdWatch(ctx context.Context, eng *engine.Engine, cfg *config.Config, logger *slog.Logger) error {
	schedule := strings.TrimSpace(cfg.SyncSchedule)
	if schedule == "" {
		return fmt.Errorf("MM_SYNC_SCHEDULE is not set")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := eng.SyncNow(ctx); err != nil {
			logger.Warn("periodic sync failed", "error", err)
			return
		}
		logger.Info("periodic sync done")
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	c.Start()
	defer c.Stop()
	logger.Info("periodic sync started", "schedule", schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("periodic sync stopped")
	return nil
}
