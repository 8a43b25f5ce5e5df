package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/estimator"
	"github.com/lintang-b-s/jointgraph/pkg/graph"
	"github.com/lintang-b-s/jointgraph/pkg/kv"
	"github.com/lintang-b-s/jointgraph/pkg/osmparser"
	"github.com/lintang-b-s/jointgraph/pkg/server/rest"
	"github.com/lintang-b-s/jointgraph/pkg/server/rest/service"
	"github.com/lintang-b-s/jointgraph/pkg/snap"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	listenAddr = flag.String("listenaddr", ":5000", "server listen address")
	mapFile    = flag.String("f", "solo_jogja.osm.pbf", "openstreetmap file for the road network graph")
	dbDir      = flag.String("dbdir", "./jointgraph-db", "badger directory for road geometry")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("reading osm file %s", *mapFile)
	parser := osmparser.NewOSMParser()
	roadNetwork, err := parser.Parse(*mapFile)
	if err != nil {
		log.Fatal(err)
	}

	db, err := badger.Open(badger.DefaultOptions(*dbDir))
	if err != nil {
		log.Fatal(err)
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	ctx := context.Background()
	if err := kvDB.SaveRoadGeometries(ctx, roadNetwork.Geometries); err != nil {
		log.Fatal(err)
	}

	indexGraph, err := graph.NewIndexGraph(kvDB, estimator.NewCarEdgeEstimator())
	if err != nil {
		log.Fatal(err)
	}
	indexGraph.Import(roadNetwork.Joints)
	recordMemProfile(memprofile, "import_graph")

	log.Printf("applying %d turn restrictions...", len(roadNetwork.Restrictions))
	applied, skipped := indexGraph.ApplyRestrictions(roadNetwork.Restrictions)
	log.Printf("turn restrictions applied: %d, skipped: %d", applied, skipped)

	snapper := snap.NewJointSnapper()
	jointCells := make([]kv.JointCell, 0, indexGraph.GetNumJoints())
	for jointID := 0; jointID < indexGraph.GetNumJoints(); jointID++ {
		point := indexGraph.GetJointPoint(datastructure.JointID(jointID))
		snapper.InsertJoint(datastructure.JointID(jointID), point)
		jointCells = append(jointCells, kv.JointCell{
			JointID: uint32(jointID),
			Lat:     point.Lat,
			Lon:     point.Lon,
		})
	}
	if err := kvDB.BuildH3IndexedJoints(ctx, jointCells); err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "spatial_index")

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)
	m.ObserveRestrictions(applied, skipped)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	navigatorSvc := service.NewNavigationService(indexGraph, snapper, kvDB)
	rest.NavigatorRouter(r, navigatorSvc)

	fmt.Printf("\njoint graph ready, %d joints, restrictions rewritten\n", indexGraph.GetNumJoints())
	fmt.Printf("server started at %s\n", *listenAddr)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
