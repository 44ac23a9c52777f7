package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"civic-backend/internal/export"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

const listTimeLayout = "2006-01-02 15:04"

func (c *cli) complaintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complaints",
		Aliases: []string{"c"},
		Short:   "Inspect and update IVR complaints",
	}
	cmd.AddCommand(c.complaintsListCmd())
	cmd.AddCommand(c.complaintsShowCmd())
	cmd.AddCommand(c.complaintsSetStatusCmd())
	cmd.AddCommand(c.complaintsExportCmd())
	return cmd
}

func (c *cli) complaintsListCmd() *cobra.Command {
	var f repository.ComplaintFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()

			f = f.Normalize()
			items, err := c.be.Complaints.List(ctx, f)
			if err != nil {
				return err
			}
			total, err := c.be.Complaints.Count(ctx, f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPHONE\tSTATUS\tPRIORITY\tCATEGORY\tCREATED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					it.ComplaintID, it.PhoneNumber, it.Status, it.Priority, it.Category,
					it.CreatedAt.Local().Format(listTimeLayout))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(items), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "Only complaints with this status")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "Only complaints with this priority")
	cmd.Flags().StringVar(&f.Category, "category", "", "Only complaints in this category")
	cmd.Flags().StringVarP(&f.Q, "query", "q", "", "Match phone number or description")
	cmd.Flags().IntVar(&f.Limit, "limit", repository.DefaultComplaintLimit, "Page size")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "Rows to skip")
	return cmd
}

func (c *cli) complaintsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <complaint-id>",
		Short: "Print one complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()

			it, err := c.be.Complaints.FindByComplaintID(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if it == nil {
				return fmt.Errorf("complaint %s not found", args[0])
			}
			printComplaint(cmd, it)
			return nil
		},
	}
}

func (c *cli) complaintsSetStatusCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "set-status <complaint-id> <status>",
		Short: "Change a complaint's status, optionally appending a note",
		Long: `Change a complaint's status. Valid statuses are pending, in-progress,
resolved and closed. --note appends to the complaint's notes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.ComplaintStatus(strings.TrimSpace(args[1]))
			if !status.Valid() {
				return fmt.Errorf("invalid status %q", args[1])
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()

			it, err := c.be.Complaints.UpdateStatus(ctx, strings.TrimSpace(args[0]), status, strings.TrimSpace(note))
			if errors.Is(err, repository.ErrNotFound) || (err == nil && it == nil) {
				return fmt.Errorf("complaint %s not found", args[0])
			}
			if err != nil {
				return err
			}
			printComplaint(cmd, it)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Note to append")
	return cmd
}

func (c *cli) complaintsExportCmd() *cobra.Command {
	var (
		out string
		f   repository.ComplaintFilter
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching complaints to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()

			items, err := export.FetchAll(ctx, c.be.Complaints, f.Normalize())
			if err != nil {
				return err
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Complaints(file, items); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			c.log.Info().Str("file", out).Int("rows", len(items)).Msg("complaints exported")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d complaints to %s\n", len(items), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "complaints.xlsx", "Output file")
	cmd.Flags().StringVar(&f.Status, "status", "", "Only complaints with this status")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "Only complaints with this priority")
	cmd.Flags().StringVar(&f.Category, "category", "", "Only complaints in this category")
	return cmd
}

func printComplaint(cmd *cobra.Command, it *models.Complaint) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Complaint:  %s\n", it.ComplaintID)
	fmt.Fprintf(w, "Phone:      %s\n", it.PhoneNumber)
	fmt.Fprintf(w, "Status:     %s\n", it.Status)
	fmt.Fprintf(w, "Priority:   %s\n", it.Priority)
	fmt.Fprintf(w, "Category:   %s\n", it.Category)
	if it.AssignedTo != "" {
		fmt.Fprintf(w, "Assigned:   %s\n", it.AssignedTo)
	}
	fmt.Fprintf(w, "Recording:  %s\n", it.RecordingURL)
	if it.Description != "" {
		fmt.Fprintf(w, "Details:    %s\n", it.Description)
	}
	fmt.Fprintf(w, "Created:    %s\n", it.CreatedAt.Local().Format(listTimeLayout))
	for _, n := range it.Notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}
