package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"banhangso/client/internal/api"
	"banhangso/client/internal/config"
	"banhangso/client/internal/domain"
	"banhangso/client/internal/notify"
	"banhangso/client/internal/querycache"
	"banhangso/client/internal/service"
	"banhangso/client/internal/session"
	"banhangso/client/internal/views"
)

func main() {
	// .env is optional; real config comes from the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	statePath := cfg.StatePath
	if statePath == "" {
		statePath, err = session.DefaultStatePath()
		if err != nil {
			logger.Fatal("resolve state path", zap.Error(err))
		}
	}

	cache := querycache.New(logger)
	notifier := notify.NewLog(logger)
	sess := session.New(session.Options{
		Durable:   session.NewFileStore(statePath),
		Ephemeral: session.NewMemStore(),
		Cache:     cache,
		Notifier:  notifier,
		Logger:    logger,
	})
	client := api.New(cfg.BaseURL, sess, logger,
		api.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
		api.WithUnauthorizedHook(sess.Invalidate),
	)
	sess.SetClient(client)
	svc := service.New(client, cache, notifier, logger)
	vw := views.New(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sess.Restore(ctx)

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, sess, os.Args[2:])
	case "logout":
		sess.Logout()
		fmt.Println("logged out")
	case "me":
		err = runMe(ctx, sess)
	case "products":
		err = runProducts(ctx, svc, os.Args[2:])
	case "customers":
		err = runCustomers(ctx, svc, os.Args[2:])
	case "invoice":
		err = runInvoice(ctx, vw, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: banhangctl <login|logout|me|products|customers|invoice> [flags]")
}

func runLogin(ctx context.Context, sess *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", sess.RememberedEmail(), "login email")
	password := fs.String("password", "", "login password")
	remember := fs.Bool("remember", false, "persist the session across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := sess.Login(ctx, *email, *password, *remember); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", *email)
	return nil
}

func runMe(ctx context.Context, sess *session.Store) error {
	if !sess.Authenticated() {
		return fmt.Errorf("not logged in")
	}
	// The profile loads in the background after login/restore; give it
	// a moment on a cold start.
	deadline := time.Now().Add(3 * time.Second)
	for sess.User().ID == "" && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	user := sess.User()
	org := sess.Organization()
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	if org.Name != "" {
		fmt.Printf("%s - %s\n", org.Name, org.Address)
	}
	return nil
}

func runProducts(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	search := fs.String("search", "", "name filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := svc.Products(ctx, domain.ListParams{Page: *page, Limit: *limit, Search: *search})
	if err != nil {
		return err
	}
	for _, p := range result.Items {
		fmt.Printf("%-12s %-30s %12s  stock %d\n", p.SKU, p.Name, formatVND(p.SalePrice), p.Stock)
	}
	fmt.Printf("page %d - %d items total\n", *page, result.Total)
	return nil
}

func runCustomers(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("customers", flag.ExitOnError)
	create := fs.String("create", "", "create a customer: name,phone,address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *create != "" {
		parts := strings.SplitN(*create, ",", 3)
		customer := domain.Customer{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			customer.Phone = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			customer.Address = strings.TrimSpace(parts[2])
		}
		saved, err := svc.SaveCustomer(ctx, customer)
		if err != nil {
			return err
		}
		fmt.Printf("created customer %s (%s)\n", saved.Name, saved.ID)
		return nil
	}

	result, err := svc.Customers(ctx, domain.ListParams{})
	if err != nil {
		return err
	}
	for _, c := range result.Items {
		fmt.Printf("%-24s %-12s %s\n", c.Name, c.Phone, c.Address)
	}
	return nil
}

func runInvoice(ctx context.Context, vw *views.Views, args []string) error {
	fs := flag.NewFlagSet("invoice", flag.ExitOnError)
	id := fs.String("id", "", "invoice id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("invoice: -id is required")
	}

	detail, err := vw.InvoiceDetail(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Invoice %s - %s\n", detail.Invoice.Code, detail.Party.Name)
	for _, line := range detail.Invoice.Lines {
		fmt.Printf("  %-30s x%-4d %12s\n", line.Name, line.Qty, formatVND(line.UnitPrice))
	}
	fmt.Printf("Total %s, paid %s, remaining %s\n",
		formatVND(detail.Invoice.Total), formatVND(detail.Invoice.Paid), formatVND(detail.Remaining))
	for _, payment := range detail.Payments {
		fmt.Printf("  payment %s %s (%s)\n", payment.Code, formatVND(payment.Amount), payment.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// formatVND renders an amount in đồng with dot thousand separators.
func formatVND(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	out := b.String() + "₫"
	if negative {
		return "-" + out
	}
	return out
}
