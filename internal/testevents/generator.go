package testevents

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/hangout/internal/domain/model"
)

// City is a named seed location.
type City struct {
	Name string
	Lat  float64
	Lng  float64
}

// DefaultCities are the locations generated events are spread across.
var DefaultCities = []City{
	{Name: "Berlin", Lat: 52.520, Lng: 13.405},
	{Name: "Munich", Lat: 48.137, Lng: 11.575},
	{Name: "Hamburg", Lat: 53.551, Lng: 9.993},
	{Name: "Cologne", Lat: 50.937, Lng: 6.960},
	{Name: "Frankfurt", Lat: 50.110, Lng: 8.682},
	{Name: "Vienna", Lat: 48.208, Lng: 16.373},
}

// Generation ranges.
const (
	pastEventShare   = 0.1
	unlimitedShare   = 0.3
	maxFutureHours   = 45 * 24
	maxPastHours     = 10 * 24
	minCapacity      = 2
	capacityRange    = 29
	maxEventTags     = 3
	maxProfileTags   = 4
	coordinateJitter = 0.05
	untaggedShare    = 0.15
)

var titles = map[string][]string{
	"Hiking":     {"Sunrise Ridge Walk", "Forest Trail Hike", "Lakeside Loop"},
	"Sports":     {"Pickup Football", "Beach Volleyball", "Climbing Session"},
	"Dining":     {"Ramen Crawl", "Supper Club", "Tapas Evening"},
	"Music":      {"Jazz Night", "Open Mic", "Vinyl Listening Party"},
	"Art":        {"Sketch Walk", "Gallery Hop", "Pottery Workshop"},
	"Technology": {"Go Meetup", "Hack Night", "AI Reading Group"},
	"Travel":     {"Day Trip Planning", "Backpackers Swap", "City Photo Tour"},
	"Social":     {"Board Game Night", "Pub Quiz", "Language Exchange"},
	"Education":  {"Book Club", "History Walk", "Public Lecture"},
	"Networking": {"Founders Breakfast", "Career Mixer", "Freelancer Coffee"},
	"Health":     {"Yoga in the Park", "Meditation Circle", "Running Club"},
	"Other":      {"Mystery Meetup", "Volunteer Morning", "Flea Market Stroll"},
}

var (
	firstNames = []string{"Ada", "Ben", "Cleo", "Dario", "Ema", "Finn", "Greta", "Hugo", "Ines", "Jonas", "Kira", "Luca"}
	lastNames  = []string{"Berg", "Costa", "Meyer", "Novak", "Okafor", "Park", "Rossi", "Silva", "Weber", "Young"}
)

// Generator produces plausible events and profiles. It is not safe for
// concurrent use.
type Generator struct {
	rng    *rand.Rand
	now    func() time.Time
	cities []City
	seq    int
}

// NewGenerator creates a generator; equal seeds yield equal sequences apart
// from generated profile ids.
func NewGenerator(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:    now,
		cities: DefaultCities,
	}
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

// tags returns between minimum and maximum distinct popular tags.
func (g *Generator) tags(minimum, maximum int) []string {
	n := minimum + g.rng.IntN(maximum-minimum+1)
	perm := g.rng.Perm(len(model.PopularTags))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, model.PopularTags[i])
	}
	return out
}

// Event returns an event organised by organizerID. The id is left empty
// for the store to assign.
func (g *Generator) Event(organizerID string) model.Event {
	category := g.pick(model.Categories[1:])
	city := g.cities[g.rng.IntN(len(g.cities))]
	title := g.pick(titles[category])

	offset := time.Duration(1+g.rng.IntN(maxFutureHours)) * time.Hour
	if g.rng.Float64() < pastEventShare {
		offset = -time.Duration(1+g.rng.IntN(maxPastHours)) * time.Hour
	}
	capacity := 0
	if g.rng.Float64() >= unlimitedShare {
		capacity = minCapacity + g.rng.IntN(capacityRange)
	}

	return model.Event{
		OrganizerID: organizerID,
		Title:       title,
		Description: fmt.Sprintf("%s in %s. Everyone is welcome.", title, city.Name),
		Category:    category,
		Location:    city.Name + " " + strings.ToLower(category) + " spot",
		City:        city.Name,
		Coordinate: &model.Coordinate{
			Lat: city.Lat + (g.rng.Float64()*2-1)*coordinateJitter,
			Lng: city.Lng + (g.rng.Float64()*2-1)*coordinateJitter,
		},
		Tags:         g.tags(1, maxEventTags),
		Date:         g.now().Add(offset).Truncate(time.Minute),
		MaxAttendees: capacity,
	}
}

// Profile returns a profile with a fresh id. Some profiles carry no tags.
func (g *Generator) Profile() model.Profile {
	g.seq++
	first, last := g.pick(firstNames), g.pick(lastNames)
	p := model.Profile{
		ID:       uuid.NewString(),
		FullName: first + " " + last,
		Email:    fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), g.seq),
	}
	if g.rng.Float64() >= untaggedShare {
		p.Tags = g.tags(1, maxProfileTags)
	}
	return p
}

// Profiles returns n profiles.
func (g *Generator) Profiles(n int) []model.Profile {
	out := make([]model.Profile, n)
	for i := range out {
		out[i] = g.Profile()
	}
	return out
}

// Events returns n events organised round-robin by organizers.
func (g *Generator) Events(n int, organizers []string) []model.Event {
	out := make([]model.Event, n)
	for i := range out {
		org := ""
		if len(organizers) > 0 {
			org = organizers[i%len(organizers)]
		}
		out[i] = g.Event(org)
	}
	return out
}

// Intn exposes the generator's source for join selection.
func (g *Generator) Intn(n int) int {
	return g.rng.IntN(n)
}
