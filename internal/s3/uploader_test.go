package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	u := &Uploader{Bucket: "garden", Region: "eu-west-1"}
	assert.Equal(t, "https://garden.s3.eu-west-1.amazonaws.com/plants/corn.png", u.ObjectURL("plants/corn.png"))

	u.CloudFrontDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/plants/corn.png", u.ObjectURL("plants/corn.png"))
}
