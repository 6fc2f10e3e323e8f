/*
Copyright © 2026 the Verkenning authors.
This file is part of Verkenning.

Verkenning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Verkenning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Verkenning.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package dijkutil contains the command-line interface and HTTP API of
// the dike design tool.
package dijkutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/volume"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is the version of the dike design tool.
const Version = "2.0.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	designFlags := []*pflag.FlagSet{designCmd.Flags(), volumeCmd.Flags(), costCmd.Flags(), crossSectionCmd.Flags()}
	groundFlags := []*pflag.FlagSet{designCmd.Flags(), volumeCmd.Flags(), crossSectionCmd.Flags(), serveCmd.Flags()}

	// Options are the configuration options available to the tool.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging level: debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DisplayProj",
			usage: `
              DisplayProj is the proj4 definition of the spatial reference
              in which designs are exchanged and stored. The default is
              web mercator.`,
			defaultVal: geodesy.WebMercator,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MetricProj",
			usage: `
              MetricProj is the proj4 definition of the metric spatial
              reference in which offset lines and volumes are calculated.
              The default is UTM zone 31N.`,
			defaultVal: geodesy.UTM31N,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ReferenceLine",
			usage: `
              ReferenceLine is the path to a GeoJSON file with the reference
              line of the dike in WGS84 longitude and latitude. It can hold a
              LineString geometry, a Feature or a FeatureCollection whose
              first feature is a LineString.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   designFlags,
		},
		{
			name: "Profile",
			usage: `
              Profile is the path to the cross-section profile, a TOML file
              with [[profiel]] tables or a JSON array, each row holding
              locatie, afstand and hoogte.`,
			shorthand:  "p",
			defaultVal: "",
			flagsets:   designFlags,
		},
		{
			name: "Rivierzijde",
			usage: `
              Rivierzijde is the side of the reference line, looking in the
              drawing direction, on which the river lies: rechts or links.`,
			defaultVal: string(design.Rechts),
			flagsets:   designFlags,
		},
		{
			name: "GridSize",
			usage: `
              GridSize is the spacing in meters of the grid on which volumes
              are calculated.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{designCmd.Flags(), volumeCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Alpha",
			usage: `
              Alpha is the alpha shape parameter, in meters, used to outline
              the area where the design lies above the ground.`,
			defaultVal: volume.DefaultAlpha,
			flagsets:   []*pflag.FlagSet{designCmd.Flags(), volumeCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "TerrainMBTiles",
			usage: `
              TerrainMBTiles is the path to an MBTiles file with terrain-RGB
              tiles in web mercator. If it is empty, GroundElevation is used.`,
			defaultVal: "",
			flagsets:   groundFlags,
		},
		{
			name: "TerrainFlipY",
			usage: `
              TerrainFlipY specifies whether the tile rows of TerrainMBTiles
              are numbered from the south (TMS), as in the MBTiles
              specification.`,
			defaultVal: true,
			flagsets:   groundFlags,
		},
		{
			name: "TerrainCacheTiles",
			usage: `
              TerrainCacheTiles is the number of decoded terrain tiles kept
              in memory.`,
			defaultVal: 256,
			flagsets:   groundFlags,
		},
		{
			name: "GroundElevation",
			usage: `
              GroundElevation is the elevation in meters of a flat ground
              surface, used when TerrainMBTiles is not set.`,
			defaultVal: 0.0,
			flagsets:   groundFlags,
		},
		{
			name: "StationInterval",
			usage: `
              StationInterval is the distance in meters between the points of
              a cross-section.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{crossSectionCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "CrossSection.Lon",
			usage: `
              CrossSection.Lon is the longitude of the point closest to the
              location of the cross-section.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{crossSectionCmd.Flags()},
		},
		{
			name: "CrossSection.Lat",
			usage: `
              CrossSection.Lat is the latitude of the point closest to the
              location of the cross-section.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{crossSectionCmd.Flags()},
		},
		{
			name: "CrossSection.Length",
			usage: `
              CrossSection.Length is the length in meters of the
              cross-section, which is centered on the reference line.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{crossSectionCmd.Flags()},
		},
		{
			name: "OutputKML",
			usage: `
              OutputKML is the path of the KML file to write the design to.
              Nothing is written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{designCmd.Flags()},
		},
		{
			name: "OutputShp",
			usage: `
              OutputShp is the base path of the shapefiles to write the strip
              outlines and the above-ground footprint to. Nothing is written
              if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{designCmd.Flags()},
		},
		{
			name: "Cost.APIURL",
			usage: `
              Cost.APIURL is the base URL of the cost calculation service,
              ending in a slash.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costCmd.Flags()},
		},
		{
			name: "Cost.Complexity",
			usage: `
              Cost.Complexity is the complexity class of the measure.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costCmd.Flags()},
		},
		{
			name: "Cost.RoadSurface",
			usage: `
              Cost.RoadSurface is the road surface area in square meters.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{costCmd.Flags()},
		},
		{
			name: "Cost.NumberHouses",
			usage: `
              Cost.NumberHouses is the number of houses affected by the
              measure.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{costCmd.Flags()},
		},
		{
			name: "HTTPAddress",
			usage: `
              HTTPAddress is the address the HTTP API listens on.`,
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("DIJK")
	Cfg.AutomaticEnv()
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(designCmd)
	Root.AddCommand(volumeCmd)
	Root.AddCommand(crossSectionCmd)
	Root.AddCommand(costCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("dijkontwerp: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("dijkontwerp: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "dijkontwerp",
	Short: "Design dike reinforcements and calculate their earthwork.",
	Long: `dijkontwerp sweeps a cross-section profile along the reference line of a
dike to build a 3D design surface, and calculates the fill and excavation
volumes against the existing ground.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'DIJK_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of dijkontwerp.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("dijkontwerp v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

// designCmd builds a design and writes it to the configured outputs.
var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Build a dike design.",
	Long: `design builds the 3D surface of a dike design, calculates its volumes and
writes the result to the configured KML and shapefile outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kmlFile, err := checkOutputFile(Cfg.GetString("OutputKML"))
		if err != nil {
			return err
		}
		shpFile, err := checkOutputFile(Cfg.GetString("OutputShp"))
		if err != nil {
			return err
		}
		d, err := DesignerConfig(Cfg)
		if err != nil {
			return err
		}
		defer closeGround(d)
		s, err := loadSession(Cfg, d)
		if err != nil {
			return err
		}
		if err := d.Run(cmd.Context(), s); err != nil {
			return err
		}
		for _, t := range design.Taluds(s.Profile) {
			cmd.Printf("talud %s - %s: 1:%.1f\n", t.From, t.To, t.Ratio)
		}
		printVolumes(cmd, s.Volumes)
		return WriteOutputs(d, s, kmlFile, shpFile)
	},
	DisableAutoGenTag: true,
}

// volumeCmd prints the volumes of a design as JSON.
var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Calculate the earthwork volumes of a dike design.",
	Long: `volume builds a dike design and prints its fill, excavation and total
volumes, truncated to two decimals, as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := DesignerConfig(Cfg)
		if err != nil {
			return err
		}
		defer closeGround(d)
		s, err := loadSession(Cfg, d)
		if err != nil {
			return err
		}
		if err := d.Run(cmd.Context(), s); err != nil {
			return err
		}
		e := json.NewEncoder(cmd.OutOrStdout())
		e.SetIndent("", "  ")
		return e.Encode(s.Volumes.Display())
	},
	DisableAutoGenTag: true,
}

// crossSectionCmd prints a ground profile across the reference line.
var crossSectionCmd = &cobra.Command{
	Use:   "crosssection",
	Short: "Print a ground profile across the reference line.",
	Long: `crosssection samples the ground elevation along a line perpendicular to the
reference line, near the point given by CrossSection.Lon and CrossSection.Lat,
and prints the distance along the line and the elevation as CSV. Points
without ground data have an empty elevation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := DesignerConfig(Cfg)
		if err != nil {
			return err
		}
		defer closeGround(d)
		ref, err := readReferenceLine(Cfg, d)
		if err != nil {
			return err
		}
		pts, err := CrossSection(cmd.Context(), d, ref,
			Cfg.GetFloat64("CrossSection.Lon"), Cfg.GetFloat64("CrossSection.Lat"),
			Cfg.GetFloat64("CrossSection.Length"), Cfg.GetFloat64("StationInterval"))
		if err != nil {
			return err
		}
		return writeCrossSection(cmd.OutOrStdout(), pts)
	},
	DisableAutoGenTag: true,
}

// costCmd sends a design to the cost calculation service.
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Calculate the cost of a dike design.",
	Long: `cost builds the 3D surface of a dike design, sends it to the cost
calculation service at Cost.APIURL and prints the cost breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, req, err := CostConfig(Cfg)
		if err != nil {
			return err
		}
		d, err := DesignerConfig(Cfg)
		if err != nil {
			return err
		}
		defer closeGround(d)
		s, err := loadSession(Cfg, d)
		if err != nil {
			return err
		}
		b, err := Cost(cmd.Context(), d, c, s, req)
		if err != nil {
			return err
		}
		for _, cat := range b.Categories() {
			cmd.Printf("%s: %s\n", cat, b[cat])
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	Long: `serve starts an HTTP API for building designs and cross-sections at
HTTPAddress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := DesignerConfig(Cfg)
		if err != nil {
			return err
		}
		defer closeGround(d)
		srv := &Server{Designer: d, StationInterval: Cfg.GetFloat64("StationInterval")}
		addr := Cfg.GetString("HTTPAddress")
		logrus.WithField("address", addr).Info("dijkontwerp: server starting")
		return srv.Handler().Run(addr)
	},
	DisableAutoGenTag: true,
}
