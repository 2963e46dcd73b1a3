package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"bonneaffaire/internal/logger"
	"bonneaffaire/internal/storefront"
	"bonneaffaire/pkg/apperrors"
	"bonneaffaire/pkg/shopapi"
)

const usage = `Bonne Affaire 78 - boutique en ligne

Usage:
  storefront [options] <command> [arguments]

Commands:
  products [--category salon|chambre|cuisine|gigogne|all]
  add <product id>
  remove <line number>
  cart
  checkout (--line "Prénom,Nom,Email,Téléphone,Adresse,Ville,Code Postal" | --first-name ... --postal-code ...)

Options:
`

func main() {
	flags := pflag.NewFlagSet("storefront", pflag.ExitOnError)
	flags.SetInterspersed(false)
	apiURL := flags.String("api", getEnv("BONNEAFFAIRE_API_URL", "http://localhost:3001/api"), "shop API base URL")
	cartDir := flags.String("cart-dir", defaultCartDir(), "directory holding the stored cart")
	timeout := flags.Duration("timeout", 10*time.Second, "API request timeout")
	logLevel := flags.String("log-level", "warn", "log level")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	zlog, err := logger.New("production", *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	session := storefront.NewSession(
		shopapi.NewClient(*apiURL, *timeout),
		storefront.NewOSFileStorage(*cartDir),
		zlog,
	)

	ctx := context.Background()
	command, args := flags.Arg(0), flags.Args()[1:]

	switch command {
	case "products":
		err = runProducts(ctx, session, args)
	case "add":
		err = runAdd(ctx, session, args)
	case "remove":
		err = runRemove(session, args)
	case "cart":
		printCart(session)
	case "checkout":
		err = runCheckout(ctx, session, args)
	default:
		flags.Usage()
		os.Exit(2)
	}

	if err != nil {
		zlog.Debug("Command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "❌ %s\n", describe(err))
		os.Exit(1)
	}
}

func runProducts(ctx context.Context, session *storefront.Session, args []string) error {
	flags := pflag.NewFlagSet("products", pflag.ContinueOnError)
	category := flags.String("category", storefront.AllCategories, "category filter")
	if err := flags.Parse(args); err != nil {
		return err
	}

	session.LoadProducts(ctx)
	if session.Fallback() {
		fmt.Println("📱 Mode démonstration - Connectez l'API pour un fonctionnement complet")
	}

	cards := storefront.RenderProducts(session.Filter(*category))
	if len(cards) == 0 {
		fmt.Println("📦 Aucun produit disponible pour le moment")
		return nil
	}
	for _, card := range cards {
		price := formatEuros(card.Price)
		if card.OldPrice != nil {
			price += " (au lieu de " + formatEuros(*card.OldPrice) + ")"
		}
		fmt.Printf("%s  %-40s -%d%%  %s\n    id: %s\n", card.Icon, card.Name, card.Discount, price, card.ID)
	}
	return nil
}

func runAdd(ctx context.Context, session *storefront.Session, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: add <product id>")
	}

	session.LoadProducts(ctx)
	item, err := session.AddToCart(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("🎉 %s ajouté ! Total: %s\n", item.Name, formatEuros(session.Cart().Total()))
	return nil
}

func runRemove(session *storefront.Session, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <line number>")
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line number %q", args[0])
	}

	item, err := session.RemoveFromCart(line - 1)
	if err != nil {
		return err
	}
	fmt.Printf("🗑️ %s retiré du panier\n", item.Name)
	return nil
}

func printCart(session *storefront.Session) {
	cart := session.Cart()
	if cart.IsEmpty() {
		fmt.Println("🛒 Votre panier est vide ! Découvrez nos offres 🔥")
		return
	}

	view := storefront.RenderCart(cart, session.Fallback())
	fmt.Println("🛒 Votre Panier")
	for _, line := range view.Lines {
		fmt.Printf("  %d. %-40s x%d  %s\n", line.Index+1, line.Name, line.Quantity, formatEuros(line.Subtotal))
	}
	fmt.Printf("Total: %s (%d articles)\n", formatEuros(view.Total), view.Count)
}

func runCheckout(ctx context.Context, session *storefront.Session, args []string) error {
	flags := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	line := flags.String("line", "", "Prénom,Nom,Email,Téléphone,Adresse,Ville,Code Postal")
	var info storefront.CustomerInfo
	flags.StringVar(&info.FirstName, "first-name", "", "first name")
	flags.StringVar(&info.LastName, "last-name", "", "last name")
	flags.StringVar(&info.Email, "email", "", "email address")
	flags.StringVar(&info.Phone, "phone", "", "phone number")
	flags.StringVar(&info.Street, "street", "", "street address")
	flags.StringVar(&info.City, "city", "", "city")
	flags.StringVar(&info.PostalCode, "postal-code", "", "postal code")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *line != "" {
		info = storefront.ParseCustomerLine(*line)
	}

	session.LoadProducts(ctx)
	conf, err := session.Checkout(ctx, info)
	if err != nil {
		return err
	}

	verb := "validée"
	if conf.Demo {
		verb = "simulée"
	}
	fmt.Printf("🎉 Commande %s !\n\nNuméro: %s\nTotal: %s\n", verb, conf.OrderNumber, formatEuros(conf.Total))
	if conf.EstimatedDelivery != nil {
		fmt.Printf("Livraison estimée: %s\n", conf.EstimatedDelivery.Format("02/01/2006"))
	}
	if conf.Demo {
		fmt.Println("\n(Mode démonstration - Connectez l'API pour un fonctionnement complet)")
	} else {
		fmt.Println("\nVous recevrez un email de confirmation sous peu !")
	}
	return nil
}

func describe(err error) string {
	var (
		verr     *apperrors.ValidationError
		rejected *shopapi.RejectedError
	)
	switch {
	case errors.As(err, &verr):
		return "Veuillez remplir tous les champs correctement:\n  " + strings.Join(verr.Messages(), "\n  ")
	case errors.As(err, &rejected):
		msg := "Erreur lors de la commande: " + rejected.Message
		if len(rejected.Errors) > 0 {
			msg += "\n  " + strings.Join(rejected.Errors, "\n  ")
		}
		return msg
	case errors.Is(err, storefront.ErrEmptyCart):
		return "Votre panier est vide"
	case errors.Is(err, storefront.ErrIndexOutOfRange):
		return "Cette ligne n'existe pas dans le panier"
	}
	return err.Error()
}

func formatEuros(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + "€"
}

func defaultCartDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bonneaffaire78"
	}
	return filepath.Join(dir, "bonneaffaire78")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
