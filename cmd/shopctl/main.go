// shopctl is a terminal front end for the storefront backend. It plays the
// role of the web view layer: it renders what the client packages fetch and
// forwards user actions to them.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/cart"
	"github.com/tauseefhaider1/clientfinalproject/internal/catalog"
	"github.com/tauseefhaider1/clientfinalproject/internal/checkout"
	"github.com/tauseefhaider1/clientfinalproject/internal/config"
	"github.com/tauseefhaider1/clientfinalproject/internal/logger"
	"github.com/tauseefhaider1/clientfinalproject/internal/orders"
	"github.com/tauseefhaider1/clientfinalproject/internal/session"
)

const usage = `usage: shopctl <command> [args]

commands:
  login <email>             log in (password read from stdin)
  logout                    log out
  signup <name> <email>     create an account (password read from stdin)
  verify-otp <email> <code> confirm a signup/reset OTP
  resend-otp <email>        request a fresh OTP
  products [search]         browse the catalog
  categories                list categories
  cart                      show the cart
  cart add <productID> [n]  add n units (default 1)
  cart inc <productID>      increase quantity by one
  cart dec <productID>      decrease quantity by one
  cart rm <productID>       remove a line
  cart clear                empty the cart
  checkout                  place an order from the current cart
  orders [id]               order history / order detail
`

// terminalNavigator satisfies session.Navigator for a CLI: there is no login
// view to redirect to, so "navigation" is a message telling the user to run
// shopctl login again.
type terminalNavigator struct{}

func (terminalNavigator) ToLogin() {
	fmt.Fprintln(os.Stderr, "session expired: please run `shopctl login` again")
}

func (terminalNavigator) AtLogin() bool { return false }

type app struct {
	manager  *session.Manager
	catalog  *catalog.Client
	cart     *cart.Reconciler
	checkout *checkout.Submitter
	orders   *orders.Client
	in       *bufio.Reader
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	store, err := session.NewFileStore(cfg.StateFile, cfg.StateSecret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	apiClient := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.HTTPTimeout))
	a := &app{
		manager:  session.NewManager(apiClient, store, terminalNavigator{}),
		catalog:  catalog.NewClient(apiClient),
		cart:     cart.NewReconciler(apiClient),
		checkout: checkout.NewSubmitter(apiClient),
		orders:   orders.NewClient(apiClient),
		in:       bufio.NewReader(os.Stdin),
	}

	ctx := context.Background()
	a.manager.Initialize(ctx)

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.manager.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "signup":
		return a.cmdSignup(ctx, args)
	case "verify-otp":
		if len(args) != 2 {
			return errors.New("usage: shopctl verify-otp <email> <code>")
		}
		if err := a.manager.VerifyOTP(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("verified")
		return nil
	case "resend-otp":
		if len(args) != 1 {
			return errors.New("usage: shopctl resend-otp <email>")
		}
		if err := a.manager.ResendOTP(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("OTP sent")
		return nil
	case "products":
		return a.cmdProducts(ctx, args)
	case "categories":
		return a.cmdCategories(ctx)
	case "cart":
		return a.cmdCart(ctx, args)
	case "checkout":
		return a.cmdCheckout(ctx)
	case "orders":
		return a.cmdOrders(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shopctl login <email>")
	}
	fmt.Print("password: ")
	password, err := a.readLine()
	if err != nil {
		return err
	}

	identity, err := a.manager.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Printf("welcome back, %s\n", identity.Name)
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: shopctl signup <name> <email>")
	}
	fmt.Print("password: ")
	password, err := a.readLine()
	if err != nil {
		return err
	}
	fmt.Print("phone: ")
	phone, err := a.readLine()
	if err != nil {
		return err
	}

	otpRequired, err := a.manager.Signup(ctx, args[0], args[1], password, phone)
	if err != nil {
		return err
	}
	if otpRequired {
		fmt.Println("account created; check your email and run `shopctl verify-otp`")
	} else {
		fmt.Println("account created")
	}
	return nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	filter := catalog.Filter{}
	if len(args) > 0 {
		filter.Search = strings.Join(args, " ")
	}
	products, err := a.catalog.List(ctx, filter)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%-26s %10.2f  %s\n", p.ID, p.Price, p.Name)
	}
	return nil
}

func (a *app) cmdCategories(ctx context.Context) error {
	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	if a.manager.Status() != session.Authenticated {
		return errors.New("please log in first")
	}

	if len(args) == 0 {
		rc, err := a.cart.Fetch(ctx)
		if err != nil {
			return err
		}
		a.printCart(rc)
		return nil
	}

	var (
		rc  *cart.ReconciledCart
		err error
	)
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return errors.New("usage: shopctl cart add <productID> [n]")
		}
		n := 1
		if len(args) == 3 {
			if _, convErr := fmt.Sscanf(args[2], "%d", &n); convErr != nil || n < 1 {
				return errors.New("quantity must be a positive integer")
			}
		}
		rc, err = a.cart.Add(ctx, args[1], n)
	case "inc":
		if len(args) != 2 {
			return errors.New("usage: shopctl cart inc <productID>")
		}
		rc, err = a.cart.ChangeQuantity(ctx, args[1], 1, a.confirmRemoval)
	case "dec":
		if len(args) != 2 {
			return errors.New("usage: shopctl cart dec <productID>")
		}
		rc, err = a.cart.ChangeQuantity(ctx, args[1], -1, a.confirmRemoval)
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: shopctl cart rm <productID>")
		}
		rc, err = a.cart.Remove(ctx, args[1])
	case "clear":
		if !a.confirmPrompt("Remove all items from cart?") {
			return nil
		}
		rc, err = a.cart.Clear(ctx)
	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
	if err != nil {
		if errors.Is(err, cart.ErrUnavailable) {
			return errors.New("this cart feature is not available on the backend yet")
		}
		return err
	}
	a.printCart(rc)
	return nil
}

func (a *app) cmdCheckout(ctx context.Context) error {
	if a.manager.Status() != session.Authenticated {
		return errors.New("please log in first")
	}

	rc, err := a.cart.Fetch(ctx)
	if err != nil {
		return err
	}
	a.printCart(rc)
	if len(rc.ValidLines) == 0 {
		return errors.New("nothing to check out")
	}

	form := checkout.Form{FullName: a.manager.Session().Identity.Name}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"full name", &form.FullName},
		{"address", &form.Address},
		{"city", &form.City},
		{"postal code", &form.PostalCode},
		{"phone", &form.Phone},
		{"payment method [cod]", &form.PaymentMethod},
	} {
		fmt.Printf("%s: ", f.prompt)
		v, err := a.readLine()
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	orderID, err := a.checkout.Submit(ctx, form, rc)
	if err != nil {
		a.checkout.Reset()
		return err
	}
	fmt.Printf("order placed! id: %s\n", orderID)
	return nil
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	if len(args) == 1 {
		o, err := a.orders.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("order %s  %s  total %.2f\n", o.ID, o.Status, o.TotalAmount)
		for _, it := range o.Items {
			fmt.Printf("  %dx %-30s %10.2f\n", it.Quantity, it.Name, it.Price)
		}
		return nil
	}

	list, err := a.orders.Mine(ctx)
	if err != nil {
		return err
	}
	for _, o := range list {
		fmt.Printf("%-26s %-10s %10.2f  %s\n",
			o.ID, o.Status, o.TotalAmount, o.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *app) printCart(rc *cart.ReconciledCart) {
	for _, l := range rc.ValidLines {
		fmt.Printf("  %dx %-30s %10.2f\n", l.Quantity, l.Product.Name, l.Product.Price)
	}
	for _, l := range rc.InvalidLines {
		name := "(product no longer available)"
		if l.Product != nil && l.Product.Name != "" {
			name = l.Product.Name + " (unavailable)"
		}
		fmt.Printf("  %dx %-30s %10s  [remove with `cart rm %s`]\n", l.Quantity, name, "-", l.ProductID)
	}
	t := rc.Totals
	fmt.Printf("  subtotal %.2f  shipping %.2f  tax %.2f  total %.2f\n",
		t.Subtotal, t.Shipping, t.Tax, t.GrandTotal)
	if len(rc.InvalidLines) > 0 {
		fmt.Println("  note: unavailable items are excluded from totals and checkout")
	}
}

func (a *app) confirmRemoval(l cart.Line) bool {
	name := l.ProductID
	if l.Product != nil && l.Product.Name != "" {
		name = l.Product.Name
	}
	return a.confirmPrompt(fmt.Sprintf("Remove %s from cart?", name))
}

func (a *app) confirmPrompt(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, err := a.readLine()
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
