package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	appcart "github.com/vitrina/backend/internal/application/cart"
	appcatalog "github.com/vitrina/backend/internal/application/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
)

const shellHelp = `Commands:
  load C L      load the catalog for category C and approved line L
  products      list the loaded products
  add ID [Q]    add Q units (default 1) of product ID to the cart
  set I Q       set the quantity of cart line I
  inc I         add one unit to cart line I
  dec I         remove one unit from cart line I (never below 1)
  rm I          remove cart line I
  clear         empty the cart (asks for confirmation)
  checkout      complete the purchase
  cart          show the cart
  share ID      print the messaging link for product ID
  help          show this help
  quit          leave the shell
Cart lines are numbered from 1.`

// shell is an interactive front end over one storefront session
type shell struct {
	ctx     context.Context
	in      *bufio.Scanner
	out     io.Writer
	sess    *appcart.Session
	loader  *appcatalog.Loader
	cart    *appcart.Service
	inquiry *appcart.InquiryService
}

func newShell(ctx context.Context, in io.Reader, out io.Writer, sess *appcart.Session,
	loader *appcatalog.Loader, cartSvc *appcart.Service, inquiry *appcart.InquiryService) *shell {
	return &shell{
		ctx:     ctx,
		in:      bufio.NewScanner(in),
		out:     out,
		sess:    sess,
		loader:  loader,
		cart:    cartSvc,
		inquiry: inquiry,
	}
}

// run reads commands until quit, end of input or context cancellation
func (s *shell) run() error {
	fmt.Fprintln(s.out, `Vitrina shell. Type "help" for commands.`)
	for {
		if s.ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if !s.exec(s.in.Text()) {
			return nil
		}
	}
}

// exec runs one command line and reports whether the shell should continue
func (s *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "load":
		err = s.load(args)
	case "products":
		s.printProducts(s.loader.View(s.sess.Registry).Products)
	case "add":
		err = s.add(args)
	case "set":
		err = s.withLine(args, 2, func(index int) (*appcart.CartResponse, error) {
			return s.cart.SetQuantityInput(s.ctx, s.sess, index, args[1])
		})
	case "inc", "dec":
		delta := 1
		if cmd == "dec" {
			delta = -1
		}
		err = s.withLine(args, 1, func(index int) (*appcart.CartResponse, error) {
			return s.cart.AdjustQuantity(s.ctx, s.sess, index, delta)
		})
	case "rm":
		err = s.withLine(args, 1, func(index int) (*appcart.CartResponse, error) {
			return s.cart.RemoveLine(s.ctx, s.sess, index)
		})
	case "clear":
		err = s.clear()
	case "checkout":
		err = s.checkout()
	case "cart":
		s.printCart(s.cart.Cart(s.sess))
	case "share":
		err = s.share(args)
	default:
		fmt.Fprintf(s.out, "unknown command %q, type \"help\"\n", cmd)
	}

	if err != nil {
		s.printError(err)
	}
	return true
}

func (s *shell) load(args []string) error {
	if len(args) != 2 {
		return usageError("load CATEGORY LINE")
	}
	var result *appcatalog.LoadResult
	err := s.sess.Exclusive(func() error {
		var err error
		result, err = s.loader.LoadRaw(s.ctx, s.sess.Registry, args[0], args[1])
		return err
	})
	if err != nil {
		return err
	}
	if len(result.Products) == 0 {
		fmt.Fprintln(s.out, "No products found.")
		return nil
	}
	s.printProducts(result.Products)
	for _, w := range result.Warnings {
		fmt.Fprintf(s.out, "warning: entry %d: %s\n", w.Position+1, w.Message)
	}
	return nil
}

func (s *shell) add(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("add ID [QUANTITY]")
	}
	quantity := 1
	if len(args) == 2 {
		q, err := strconv.Atoi(args[1])
		if err != nil {
			return shared.NewDomainError(shared.CodeValidation, "quantity must be a whole number")
		}
		quantity = q
	}
	resp, err := s.cart.AddItem(s.ctx, s.sess, args[0], quantity)
	if err != nil {
		return err
	}
	s.printCart(resp)
	return nil
}

// withLine parses a 1-based line number from args[0] and prints the cart
// returned by fn
func (s *shell) withLine(args []string, want int, fn func(index int) (*appcart.CartResponse, error)) error {
	if len(args) != want {
		return usageError("expected a line number" + strings.Repeat(" and a value", want-1))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return shared.NewDomainError(shared.CodeValidation, "line number must be a whole number")
	}
	resp, err := fn(n - 1)
	if err != nil {
		return err
	}
	s.printCart(resp)
	return nil
}

func (s *shell) clear() error {
	if s.cart.Totals(s.sess).ItemCount == 0 {
		fmt.Fprintln(s.out, "The cart is already empty.")
		return nil
	}
	fmt.Fprint(s.out, "Empty the cart? [y/N] ")
	if !s.in.Scan() || !isYes(s.in.Text()) {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	resp, err := s.cart.Clear(s.ctx, s.sess)
	if err != nil {
		return err
	}
	s.printCart(resp)
	return nil
}

func (s *shell) checkout() error {
	receipt, err := s.cart.Checkout(s.ctx, s.sess)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Purchase completed (%s)\n%s\nItems: %d  Total: %s\n",
		receipt.ID, receipt.Summary, receipt.ItemCount, receipt.TotalLabel)
	return nil
}

func (s *shell) share(args []string) error {
	if len(args) != 1 {
		return usageError("share ID")
	}
	link, err := s.inquiry.Link(s.sess, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, link.URL)
	return nil
}

func (s *shell) printProducts(products []appcatalog.ProductResponse) {
	if len(products) == 0 {
		fmt.Fprintln(s.out, "No catalog loaded.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.PriceLabel)
	}
	_ = tw.Flush()
}

func (s *shell) printCart(c *appcart.CartResponse) {
	if len(c.Lines) == 0 {
		fmt.Fprintln(s.out, "The cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tQTY\tSUBTOTAL")
	for _, l := range c.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", l.Index+1, l.ProductID, l.Name, l.Quantity, l.SubtotalLabel)
	}
	_ = tw.Flush()
	fmt.Fprintf(s.out, "Items: %d  Total: %s\n", c.Totals.ItemCount, c.Totals.AmountLabel)
}

func (s *shell) printError(err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		fmt.Fprintf(s.out, "error [%s]: %s\n", domainErr.Code, err.Error())
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func usageError(usage string) error {
	return shared.NewDomainError(shared.CodeValidation, "usage: "+usage)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}
