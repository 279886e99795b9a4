package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/chzchzchz/wacom-profile/internal/inputdev"
)

func newDevicesCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List input devices and their vendor:product identifiers",
		Long: `Lists the event devices under /dev/input/by-id. The ID column is the value
to put into device_id in the [defaults] section. Devices that cannot be opened
are shown with the reason; reading them usually needs membership of the
input group.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devs, err := inputdev.List(dir)
			if err != nil {
				return fmt.Errorf("unable to list %s: %w", dir, err)
			}
			renderDevices(cmd.OutOrStdout(), devs)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", inputdev.ByIDPath, "Directory of device links")
	return cmd
}

func renderDevices(w io.Writer, devs []inputdev.Device) {
	if len(devs) == 0 {
		fmt.Fprintln(w, "No input devices found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "NAME", "LINK"})
	for _, d := range devs {
		if d.Err != nil {
			t.AppendRow(table.Row{"-", d.Err.Error(), d.Link})
			continue
		}
		t.AppendRow(table.Row{d.ID(), d.Name, d.Link})
	}
	t.Render()
}
