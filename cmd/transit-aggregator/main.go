package main

import (
	"flag"
	"log"

	transitagg "github.com/theoremus-urban-solutions/transit-aggregator"
	"github.com/theoremus-urban-solutions/transit-aggregator/config"
	"github.com/theoremus-urban-solutions/transit-aggregator/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to ./config.yml, ./deploy/config.yml)")
	flag.Parse()

	transitagg.InitLogging()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	m := metrics.NewCollector()
	pipeline := transitagg.NewPipeline(cfg, m)
	server := transitagg.NewServer(cfg, pipeline, m)

	server.Start()
	server.AwaitShutdown()
}
