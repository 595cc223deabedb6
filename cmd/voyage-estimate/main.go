// voyage-estimate runs a single route energy estimate from the command line
// and prints the production time series, without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/chrissnell/solarvoyage/internal/log"
	"github.com/chrissnell/solarvoyage/pkg/cloudcover"
	"github.com/chrissnell/solarvoyage/pkg/config"
	"github.com/chrissnell/solarvoyage/pkg/geo"
)

func main() {
	routeFlag := flag.String("route", "", "Route waypoints as \"lat,lon;lat,lon;...\" (at least two)")
	startFlag := flag.String("start", "", "Start time, RFC3339 (default: now)")
	speed := flag.Float64("speed", 10, "Vessel speed in km/h")
	area := flag.Float64("area", 10, "Panel surface area in m²")
	efficiency := flag.Float64("efficiency", 0.2, "Panel output in kW/m² at full sun")
	clouds := flag.Bool("clouds", false, "Apply historic cloud-cover attenuation (fetches from NASA POWER)")
	cachePath := flag.String("cloud-cache", "", "Optional sqlite path for the cloud-cover day cache")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	waypoints, err := parseRoute(*routeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -route: %v\n", err)
		os.Exit(1)
	}

	start := time.Now().UTC()
	if *startFlag != "" {
		start, err = time.Parse(time.RFC3339, *startFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -start: %v\n", err)
			os.Exit(1)
		}
	}

	var provider estimator.CloudProvider
	if *clouds {
		var dayCache *cloudcover.DayCache
		if *cachePath != "" {
			dayCache, err = cloudcover.OpenDayCache(*cachePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not open cloud cache: %v\n", err)
				os.Exit(1)
			}
			defer dayCache.Close()
		}
		provider = cloudcover.NewClient(config.DefaultCloudAPIEndpoint, config.DefaultRequestsPerMinute, dayCache)
	}

	journey, err := estimator.New(nil, provider).Estimate(context.Background(), estimator.EstimateRequest{
		Waypoints:         waypoints,
		StartTime:         start,
		SpeedKPH:          *speed,
		PanelAreaM2:       *area,
		EfficiencyKWPerM2: *efficiency,
		CloudAttenuation:  *clouds,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "estimate failed: %v\n", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLAT\tLON\tALTITUDE\tCLOUD\tPOWER kW\tCUMULATIVE kWh")
	for _, s := range journey.Samples {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.1f°\t%.0f%%\t%.3f\t%.3f\n",
			s.Timestamp.Format("2006-01-02 15:04"),
			s.Position.Lat, s.Position.Lon,
			s.AltitudeDeg, s.CloudFraction*100,
			s.PowerKW, s.CumulativeKWH)
	}
	tw.Flush()

	fmt.Printf("\nDistance: %.1f km   Duration: %s   Total output: %.2f kWh\n",
		journey.DistanceKm, journey.Duration().Round(time.Minute), journey.TotalKWH)
}

func parseRoute(s string) ([]geo.Point, error) {
	if s == "" {
		return nil, fmt.Errorf("route is required, e.g. -route \"54.5,10.2;54.8,10.9\"")
	}

	var waypoints []geo.Point
	for i, pair := range strings.Split(s, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("waypoint %d: expected \"lat,lon\", got %q", i, pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: bad latitude: %v", i, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: bad longitude: %v", i, err)
		}
		waypoints = append(waypoints, geo.Point{Lat: lat, Lon: lon})
	}
	return waypoints, nil
}
