package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/web/server"
	"github.com/golang/glog"
)

var port = flag.Int("port", 8080, "Port to serve on")

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := renderer.RegisterViews(); err != nil {
		glog.Exitf("Error registering metric views: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glog.Infof("Visit http://localhost:%d/api/render?scene=default to start rendering", *port)
	if err := server.NewServer(*port).Start(ctx); err != nil {
		glog.Exitf("Error running server: %v", err)
	}
}
