package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List subtitle style presets",
	Long: `List the subtitle style presets with their resolved fonts.

Use --show to print one preset as YAML. The output can be edited and
passed back with --style-file to generate or dub.

Examples:
  altyazi styles
  altyazi styles --show cinema > mystyle.yaml`,
	Args: cobra.NoArgs,
	RunE: runStyles,
}

func init() {
	rootCmd.AddCommand(stylesCmd)

	stylesCmd.Flags().
		String("show", "", "Print one preset as YAML")
}

func runStyles(cmd *cobra.Command, args []string) error {
	styles := style.NewTable(style.SystemFonts{})
	show, _ := cmd.Flags().GetString("show")
	if show != "" {
		name, err := style.ParseName(show)
		if err != nil {
			return err
		}
		return writeStyleYAML(os.Stdout, styles.Lookup(string(name)))
	}
	return renderStyles(os.Stdout, styles)
}

func writeStyleYAML(w io.Writer, cfg style.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode style: %w", err)
	}
	return enc.Close()
}

func renderStyles(w io.Writer, styles *style.Table) error {
	tw := table.NewWriter()
	if pipeline.IsTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"Name", "Font", "Size", "Color", "Outline", "Background", "Chars/line"})
	for _, name := range style.Names() {
		c := styles.Lookup(string(name))
		tw.AppendRow(table.Row{
			name,
			c.FontName,
			c.FontSize,
			c.FontColor,
			fmt.Sprintf("%s x%d", c.OutlineColor, c.OutlineWidth),
			fmt.Sprintf("%s %.0f%%", c.BackgroundColor, c.BackgroundOpacity*100),
			c.MaxCharsPerLine,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
