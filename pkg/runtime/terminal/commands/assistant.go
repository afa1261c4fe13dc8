package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/services/assistant"
)

func NewAskCmd(getApp AppFunc) *cobra.Command {
	var flags selectionFlags
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the AI assistant about the current selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := assistantFor(getApp)
			if err != nil {
				return err
			}
			sel, err := flags.selection()
			if err != nil {
				return err
			}

			answer, err := client.Ask(cmd.Context(), strings.Join(args, " "), sel)
			if err != nil {
				return err
			}
			return printAnswer(cmd.OutOrStdout(), answer)
		},
	}
	flags.register(cmd)
	return cmd
}

func NewPredictCmd(getApp AppFunc) *cobra.Command {
	var (
		region string
		year   int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Request the assistant's outlook for a region and year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := assistantFor(getApp)
			if err != nil {
				return err
			}

			answer, err := client.Predict(cmd.Context(), region, year)
			if err != nil {
				return err
			}
			return printAnswer(cmd.OutOrStdout(), answer)
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "Region id")
	cmd.Flags().IntVar(&year, "year", 0, "Year to predict")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func assistantFor(getApp AppFunc) (*assistant.Client, error) {
	client := getApp().Assistant
	if client == nil {
		return nil, fmt.Errorf("%w: set assistant.base_url", assistant.ErrNotConfigured)
	}
	return client, nil
}

// printAnswer prints the answer text, or the raw response when the
// assistant replied without one.
func printAnswer(w io.Writer, answer *assistant.Answer) error {
	if answer.Text != "" {
		_, err := fmt.Fprintln(w, answer.Text)
		return err
	}
	out, err := json.MarshalIndent(answer.Raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format assistant response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
