// freightctl is a command-line front end for the freight order backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"freight-order-service/internal/adapters/distance"
	"freight-order-service/internal/client"
	"freight-order-service/internal/config"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/pricing"
	"freight-order-service/internal/store"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"
)

const usage = `usage: freightctl <command> [flags]

commands:
  quote    price a shipment locally
  orders   list the orders visible to the account
  cancel   cancel an order (10% fee is withheld)
  watch    print the order list whenever it is refreshed`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logger, err := obs.NewLogger(obs.LogConfig{Level: config.Get("LOG_LEVEL", "warn"), Console: true})
	if err == nil {
		obs.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "quote":
		err = runQuote(args, os.Stdout)
	case "orders":
		err = runOrders(ctx, args, os.Stdout)
	case "cancel":
		err = runCancel(ctx, args, os.Stdout)
	case "watch":
		err = runWatch(ctx, args, os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "freightctl %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runQuote(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	from := fs.String("from", "", "pickup address")
	to := fs.String("to", "", "delivery address")
	weight := fs.Float64("weight", 0, "cargo weight, kg")
	volume := fs.Float64("volume", 0, "cargo volume, m3")
	cargo := fs.String("cargo", string(domain.CargoGeneral), "cargo type: general, fragile, dangerous, perishable")
	insurance := fs.Bool("insurance", false, "add insurance")
	packaging := fs.Bool("packaging", false, "add packaging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return errors.New("-from and -to are required")
	}
	req := domain.OrderRequest{CargoWeight: *weight, CargoVolume: *volume}
	if err := req.ValidateCargo(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	km, source := distance.NewResolver(nil).Resolve(context.Background(), *from, *to)
	q := pricing.New(cfg.Pricing).Quote(pricing.Input{
		WeightKg:   *weight,
		VolumeM3:   *volume,
		DistanceKm: float64(km),
		CargoType:  domain.CargoType(*cargo),
		Insurance:  *insurance,
		Packaging:  *packaging,
	})

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "distance\t%d km (%s)\n", km, source)
	fmt.Fprintf(tw, "delivery\t%.2f ₽\n", q.DeliveryCost)
	fmt.Fprintf(tw, "packaging\t%.2f ₽\n", q.Packaging)
	fmt.Fprintf(tw, "insurance\t%.2f ₽\n", q.Insurance)
	fmt.Fprintf(tw, "total\t%d ₽\n", q.Total)
	return tw.Flush()
}

// session holds the connection flags shared by the online commands.
type session struct {
	url      *string
	login    *string
	password *string
}

func sessionFlags(fs *flag.FlagSet) session {
	return session{
		url:      fs.String("url", config.Get("FREIGHT_URL", "http://localhost:8080"), "backend base URL"),
		login:    fs.String("login", config.Get("FREIGHT_LOGIN", ""), "email or phone"),
		password: fs.String("password", config.Get("FREIGHT_PASSWORD", ""), "password"),
	}
}

func (s session) open(ctx context.Context) (*store.Store, error) {
	if *s.login == "" || *s.password == "" {
		return nil, errors.New("-login and -password (or FREIGHT_LOGIN/FREIGHT_PASSWORD) are required")
	}
	c, err := client.New(*s.url, client.WithDistances(distance.NewResolver(nil)))
	if err != nil {
		return nil, err
	}
	if _, err := c.Login(ctx, *s.login, *s.password); err != nil {
		return nil, err
	}
	st := store.New(c)
	if err := st.Refresh(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func runOrders(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	sess := sessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := sess.open(ctx)
	if err != nil {
		return err
	}
	return printOrders(out, st)
}

func runCancel(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	sess := sessionFlags(fs)
	id := fs.Int64("id", 0, "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}
	st, err := sess.open(ctx)
	if err != nil {
		return err
	}

	c, err := st.Cancel(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\norder #%d: fee %.2f ₽, refund %.2f ₽\n", domain.CancellationReason, c.OrderID, c.Fee, c.Refund)
	return nil
}

func runWatch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	sess := sessionFlags(fs)
	every := fs.String("every", "@every 30s", "cron schedule for refreshes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := sess.open(ctx)
	if err != nil {
		return err
	}
	if _, err := st.Watch(ctx, *every); err != nil {
		return err
	}

	last := st.RefreshedAt()
	if err := printOrders(out, st); err != nil {
		return err
	}
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if at := st.RefreshedAt(); at.After(last) {
				last = at
				fmt.Fprintf(out, "\n-- %s\n", at.Format(time.DateTime))
				if err := printOrders(out, st); err != nil {
					return err
				}
			}
		}
	}
}

func printOrders(out io.Writer, st *store.Store) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCLIENT\tFROM\tTO\tKM\tPRICE")
	for _, o := range st.Orders() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.0f\t%.0f\n",
			o.ID, o.Status, o.ClientStatus, o.PickupAddress, o.DeliveryAddress, o.Distance, o.PriceValue())
	}
	return tw.Flush()
}
