package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/geom"
)

// hullOptions holds the flags of the hull command.
type hullOptions struct {
	padding float64
	ccw     bool
}

// hullCommand creates the hull command that computes one folder enclosure.
func (c *CLI) hullCommand() *cobra.Command {
	var opts hullOptions

	cmd := &cobra.Command{
		Use:   "hull [x,y ...]",
		Short: "Compute the enclosure of a set of points",
		Long: `Compute the convex hull, center and radius that a folder with members at the
given positions would get. Points are read from the arguments, or from stdin
when there are none, one "x,y" pair per whitespace separated field.

The center is the middle of the hull's bounding box and the radius is the
largest distance from it to a hull point, plus padding.`,
		Example: `  foldergraph hull 0,0 10,0 0,10
  foldergraph hull --ccw < points.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("padding") {
				opts.padding = c.cfg.Forces.Padding
			}
			var points []geom.Point
			var err error
			if len(args) > 0 {
				points, err = parsePoints(args)
			} else {
				points, err = readPoints(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			printHull(cmd.OutOrStdout(), points, c.cfg.Forces.ClusterOptions(), opts)
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.padding, "padding", cluster.DefaultPadding, "radius padding")
	cmd.Flags().BoolVar(&opts.ccw, "ccw", false, "print the hull as a counter-clockwise polygon")
	return cmd
}

// readPoints parses every whitespace separated field of r as a point.
func readPoints(r io.Reader) ([]geom.Point, error) {
	var fields []string
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		fields = append(fields, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read points")
	}
	return parsePoints(fields)
}

// parsePoints parses "x,y" fields.
func parsePoints(fields []string) ([]geom.Point, error) {
	points := make([]geom.Point, 0, len(fields))
	for _, f := range fields {
		x, y, ok := strings.Cut(f, ",")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "point %q: want x,y", f)
		}
		px, errX := strconv.ParseFloat(strings.TrimSpace(x), 64)
		py, errY := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if errX != nil || errY != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "point %q: coordinates must be numbers", f)
		}
		points = append(points, geom.Point{X: px, Y: py})
	}
	if len(points) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no points given")
	}
	return points, nil
}

// hullOf runs points through a cluster so the numbers match a live view.
func hullOf(points []geom.Point, opts cluster.Options) *cluster.Cluster {
	c := cluster.New("hull", nil, opts)
	for i, p := range points {
		c.AddMember(&pointNode{id: strconv.Itoa(i), pos: p})
	}
	c.Update()
	return c
}

func printHull(w io.Writer, points []geom.Point, forces cluster.Options, opts hullOptions) {
	forces.Padding = opts.padding
	c := hullOf(points, forces)

	hull := c.Hull()
	if opts.ccw {
		hull = geom.SortCounterClockwise(hull)
	}
	rows := make([][]string, len(hull))
	for i, p := range hull {
		rows[i] = []string{strconv.Itoa(i), formatCoord(p.X), formatCoord(p.Y)}
	}
	io.WriteString(w, renderTable([]string{"#", "X", "Y"}, rows)+"\n")

	center, radius := c.Circle()
	printKeyValue(w, "Center", fmt.Sprintf("%s, %s", formatCoord(center.X), formatCoord(center.Y)))
	printKeyValue(w, "Radius", formatCoord(radius))
	printKeyValue(w, "Repel", formatCoord(c.RepelRadius()))
	printStats(w, statCount{len(points), "points"}, statCount{len(hull), "on hull"})
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pointNode is a fixed position fed to a cluster.
type pointNode struct {
	id  string
	pos geom.Point
}

func (n *pointNode) ID() string               { return n.id }
func (n *pointNode) Position() geom.Point     { return n.pos }
func (n *pointNode) SetPosition(p geom.Point) { n.pos = p }
