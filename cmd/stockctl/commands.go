package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"inventory/pkg/apiclient"
	"inventory/pkg/catalog"
	"inventory/pkg/store"
)

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *pflag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, positional, fs.NArg())
	}
	return fs.Args(), nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("login", e.stderr), args, 2)
	if err != nil {
		return err
	}

	session, err := e.client.Login(ctx, rest[0], rest[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stderr, "logged in as %s (%s)\n", session.User.Username, session.User.Role)
	fmt.Fprintln(e.stdout, session.Token)
	return nil
}

func runList(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("list", e.stderr)
	query := fs.StringP("query", "q", "", "match name, description or SKU")
	lowStock := fs.Bool("low-stock", false, "only products below the low-stock threshold")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	s := store.New(e.client, store.WithLogger(e.log))
	s.Refresh(ctx)
	if msg := s.Snapshot().Error; msg != "" {
		fmt.Fprintf(e.stderr, "warning: %s\n", msg)
	}

	s.SetQuery(*query)
	if *lowStock {
		s.ToggleLowStockOnly()
	}
	return writeTable(e.stdout, s.FilteredView())
}

func runShow(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("show", e.stderr), args, 1)
	if err != nil {
		return err
	}

	p, err := e.client.Get(ctx, rest[0])
	if err != nil {
		return err
	}
	return writeDetail(e.stdout, p)
}

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add", e.stderr)
	pf := bindProductFlags(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	input := pf.input(fs)
	s := store.New(e.client, store.WithLogger(e.log))
	p, err := pf.withImage(ctx, e, input, func(in catalog.ProductInput) (catalog.Product, error) {
		return s.Create(ctx, in)
	})
	if err != nil {
		return err
	}
	return writeDetail(e.stdout, p)
}

func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("edit", e.stderr)
	pf := bindProductFlags(fs)
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id := rest[0]

	input := pf.input(fs)
	// every update carries a name; keep the stored one unless --name is given
	if input.Name == nil {
		current, err := e.client.Get(ctx, id)
		if err != nil {
			return err
		}
		input.Name = &current.Name
	}

	s := store.New(e.client, store.WithLogger(e.log))
	p, err := pf.withImage(ctx, e, input, func(in catalog.ProductInput) (catalog.Product, error) {
		return s.Update(ctx, id, in)
	})
	if err != nil {
		return err
	}
	return writeDetail(e.stdout, p)
}

func runDelete(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("delete", e.stderr), args, 1)
	if err != nil {
		return err
	}

	if err := store.New(e.client, store.WithLogger(e.log)).Remove(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "deleted %s\n", rest[0])
	return nil
}

func runUpload(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("upload", e.stderr), args, 1)
	if err != nil {
		return err
	}

	url, err := e.client.UploadImage(ctx, apiclient.ImageSource{Path: rest[0]})
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, url)
	return nil
}

type productFlags struct {
	name, description string
	sku, imageURL     string
	imageFile         string
	price, stock      float64
}

func bindProductFlags(fs *pflag.FlagSet) *productFlags {
	pf := &productFlags{}
	fs.StringVar(&pf.name, "name", "", "product name")
	fs.StringVar(&pf.description, "description", "", "free text description")
	fs.Float64Var(&pf.price, "price", 0, "unit price")
	fs.Float64Var(&pf.stock, "stock", 0, "units in stock")
	fs.StringVar(&pf.sku, "sku", "", "stock keeping unit")
	fs.StringVar(&pf.imageURL, "image-url", "", "image URL")
	fs.StringVar(&pf.imageFile, "image-file", "", "upload this image and use its URL")
	return pf
}

// input builds a ProductInput from the flags the user actually passed.
func (pf *productFlags) input(fs *pflag.FlagSet) catalog.ProductInput {
	var in catalog.ProductInput
	if fs.Changed("name") {
		in.Name = &pf.name
	}
	if fs.Changed("description") {
		in.Description = &pf.description
	}
	if fs.Changed("price") {
		in.Price = &pf.price
	}
	if fs.Changed("stock") {
		in.Stock = &pf.stock
	}
	if fs.Changed("sku") {
		in.SKU = &pf.sku
	}
	if fs.Changed("image-url") {
		in.ImageURL = &pf.imageURL
	}
	return in
}

// withImage validates in, uploads --image-file when given (it wins over
// --image-url) and runs write. An upload whose write fails is removed again.
func (pf *productFlags) withImage(ctx context.Context, e *env, in catalog.ProductInput, write func(catalog.ProductInput) (catalog.Product, error)) (catalog.Product, error) {
	if err := catalog.Check(in); err != nil {
		return catalog.Product{}, err
	}
	if pf.imageFile == "" {
		return write(in)
	}

	url, err := e.client.UploadImage(ctx, apiclient.ImageSource{Path: pf.imageFile})
	if err != nil {
		return catalog.Product{}, fmt.Errorf("upload image: %w", err)
	}
	in.ImageURL = &url

	p, err := write(in)
	if err != nil {
		if derr := e.client.DeleteUpload(ctx, url); derr != nil {
			e.log.Warn().Err(derr).Str("url", url).Msg("failed to remove uploaded image")
		}
		return catalog.Product{}, err
	}
	return p, nil
}
