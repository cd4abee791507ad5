package businessflow

import (
	"fmt"

	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/google/uuid"
)

// Demo catalogue used when the user wants to explore the tool without data.
// Deterministic apart from generated ids, so repeated demo loads look the same.
var demoTagDefinitions = []models.TagDefinition{
	{Tag: "exterior", Title1: "Building", Title2: "Outside", Content: "Facade, entrance or street view of the property"},
	{Tag: "lobby", Title1: "Building", Title2: "Inside", Content: "Reception and common areas"},
	{Tag: "room", Title1: "Accommodation", Title2: "Guest room", Content: "Bedrooms and suites"},
	{Tag: "bathroom", Title1: "Accommodation", Title2: "Guest room", Content: "Bathrooms and amenities"},
	{Tag: "pool", Title1: "Facilities", Title2: "Leisure", Content: "Indoor and outdoor pools"},
	{Tag: "restaurant", Title1: "Facilities", Title2: "Dining", Content: "Restaurants, bars and breakfast areas"},
}

var demoHotels = []struct {
	id   string
	name string
}{
	{"1001", "Grand Izumo Resort"},
	{"1002", "Hii River Lodge"},
	{"1003", "Torikami Boutique Hotel"},
}

const demoImagesPerHotel = 6

// NewDemoSession builds a complete sample session through the same model the
// real ingestion paths produce: images with empty tag lists plus the demo tag
// catalogue.
func NewDemoSession() *models.Session {
	images := make([]models.ImageItem, 0, len(demoHotels)*demoImagesPerHotel)
	seed := 100
	for _, hotel := range demoHotels {
		for i := 0; i < demoImagesPerHotel; i++ {
			seed++
			url := fmt.Sprintf("https://picsum.photos/seed/%d/640/480", seed)
			images = append(images, models.ImageItem{
				ID:              uuid.NewString(),
				URL:             url,
				Filename:        fmt.Sprintf("%d-%d.jpg", seed, i+1),
				Tags:            []string{},
				HotelID:         utils.ToPtr(hotel.id),
				HotelName:       utils.ToPtr(hotel.name),
				OriginalImageID: utils.ToPtr(fmt.Sprintf("demo-%d", seed)),
			})
		}
	}

	defs := make([]models.TagDefinition, len(demoTagDefinitions))
	copy(defs, demoTagDefinitions)

	return &models.Session{
		ID:             uuid.NewString(),
		Images:         images,
		TagDefinitions: defs,
	}
}
