package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/forum-inscriptions-api/internal/registration"
)

func newRegisterCmd(opts *options) *cobra.Command {
	var values struct {
		lastName, firstName, code, unit string
	}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Submit a registration for the forum",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			form := registration.NewForm(a.client, a.client, registration.Options{
				Catalog: a.catalog,
				Logger:  a.logger,
			})
			fields := map[registration.Field]string{
				registration.FieldLastName:  values.lastName,
				registration.FieldFirstName: values.firstName,
				registration.FieldCode:      values.code,
				registration.FieldUnit:      values.unit,
			}
			for _, field := range registration.FieldOrder {
				if err := form.SetField(field, fields[field]); err != nil {
					return err
				}
			}

			status, err := form.AwaitCode(ctx)
			if err != nil {
				return err
			}
			if status.Message != "" {
				fmt.Fprintln(opts.out, status.Message)
			}

			receipt, err := form.Submit(ctx)
			if err != nil {
				var verr *registration.ValidationError
				if errors.As(err, &verr) {
					printFieldErrors(opts, verr.Fields)
					return fmt.Errorf("invalid registration")
				}
				if msg := form.Failure(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			for _, line := range form.Confirmation() {
				fmt.Fprintln(opts.out, line)
			}
			fmt.Fprintf(opts.out, "%s (%s) - %s\n", receipt.Inscription.FullName, receipt.Inscription.Code, receipt.Inscription.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&values.lastName, "nom", "", "family name")
	cmd.Flags().StringVar(&values.firstName, "prenom", "", "given name")
	cmd.Flags().StringVar(&values.code, "cp", "", "registration code (numéro CP)")
	cmd.Flags().StringVar(&values.unit, "uo", "", "assignment unit")
	return cmd
}

func printFieldErrors(opts *options, fields map[registration.Field]string) {
	keys := make([]string, 0, len(fields))
	for field := range fields {
		keys = append(keys, string(field))
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(opts.out, "%s: %s\n", key, fields[registration.Field(key)])
	}
}
