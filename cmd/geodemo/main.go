package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"GeoIndex/quadtree"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Driver is the indexed item: a moving point identified by ID, located
// by Lon/Lat. Keyed by ID rather than by value, since coordinates
// mutate in place while the driver is being tracked.
type Driver struct {
	ID       string
	Lon, Lat float64
}

func driverPoint(d *Driver) quadtree.Point {
	return quadtree.Point{X: float32(d.Lon), Y: float32(d.Lat)}
}

func driverKey(d *Driver) string { return d.ID }

var worldRect = quadtree.Rectangle{
	X:      -180,
	Y:      -90,
	Width:  360,
	Height: 180,
}

var (
	index    *quadtree.Index[*Driver, string]
	indexMu  sync.Mutex
	drivers  = make(map[string]*Driver)
	driversM sync.Mutex
)

const (
	numDrivers    = 10000
	moveInterval  = 2 * time.Second
	searchRadiusX = 20.0
	searchRadiusY = 20.0
)

// simulateDriver mirrors the teacher's goroutine-per-driver simulation:
// one driver wanders the world at moveInterval, wrapping at the edges
// of worldRect instead of falling off it.
func simulateDriver(driverID string, seed int64) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + seed))

	time.Sleep(time.Duration(rng.Intn(5000)) * time.Millisecond)

	d := &Driver{
		ID:  driverID,
		Lon: (rng.Float64() * 360) - 180,
		Lat: (rng.Float64() * 180) - 90,
	}

	driversM.Lock()
	drivers[driverID] = d
	driversM.Unlock()

	indexMu.Lock()
	if err := index.Add(d); err != nil {
		log.Printf("driver %s: add failed: %v", driverID, err)
	}
	indexMu.Unlock()

	for {
		time.Sleep(moveInterval)

		newLon := d.Lon + (rng.Float64()-0.5)*0.1
		newLat := d.Lat + (rng.Float64()-0.5)*0.1

		if newLon > 180 {
			newLon = -180
		}
		if newLon < -180 {
			newLon = 180
		}
		if newLat > 90 {
			newLat = -90
		}
		if newLat < -90 {
			newLat = 90
		}

		d.Lon, d.Lat = newLon, newLat

		indexMu.Lock()
		index.Move(d)
		indexMu.Unlock()
	}
}

func handleFindNearby(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)

	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parametri 'lat' e 'lon' non validi o mancanti"})
		return
	}

	searchArea := quadtree.RegionRect(quadtree.Rectangle{
		X:      float32(lon),
		Y:      float32(lat),
		Width:  searchRadiusX,
		Height: searchRadiusY,
	})

	indexMu.Lock()
	found := index.QueryList(searchArea)
	indexMu.Unlock()

	type driverResponse struct {
		ID  string  `json:"id"`
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	results := make([]driverResponse, 0, len(found))
	for _, d := range found {
		results = append(results, driverResponse{ID: d.ID, Lat: d.Lat, Lon: d.Lon})
	}

	c.JSON(http.StatusOK, results)
}

func handleStats(c *gin.Context) {
	indexMu.Lock()
	internal, leaves := index.TreeStats()
	indexMu.Unlock()
	c.JSON(http.StatusOK, gin.H{"internalNodes": internal, "trackedDrivers": leaves})
}

func main() {
	index = quadtree.NewIndex[*Driver, string](worldRect, quadtree.NewPointShape(driverPoint), driverKey)

	log.Printf("Starting simulation with %d drivers...", numDrivers)
	for i := 0; i < numDrivers; i++ {
		driverID := fmt.Sprintf("driver-%d", i)
		go simulateDriver(driverID, int64(i))
	}
	log.Println("Simulation started in the background.")

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/find-nearby", handleFindNearby)
	r.GET("/stats", handleStats)

	log.Println("API server listening on http://localhost:8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
