package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestValidateRoute(t *testing.T) {
	tests := []struct {
		name    string
		payload routePayload
		want    string
	}{
		{"blank name", routePayload{Name: "  "}, "Route name cannot be empty!"},
		{"no waypoints", routePayload{Name: "Loop"}, ""},
		{
			"unnamed waypoint",
			routePayload{Name: "Loop", Waypoints: []waypointPayload{{OrderID: 3, Lat: fptr(1), Lng: fptr(1)}}},
			"Waypoint name cannot be empty! (Waypoint 3)",
		},
		{
			"missing longitude",
			routePayload{Name: "Loop", Waypoints: []waypointPayload{{OrderID: 1, Name: "A", Lat: fptr(1)}}},
			"Waypoint coordinates cannot be empty! (Waypoint 1)",
		},
		{
			"latitude out of range",
			routePayload{Name: "Loop", Waypoints: []waypointPayload{{OrderID: 2, Name: "A", Lat: fptr(-90.5), Lng: fptr(0)}}},
			"Waypoint coordinates are out of range! (Waypoint 2)",
		},
		{
			"valid",
			routePayload{Name: " Loop ", Waypoints: []waypointPayload{{Name: " A ", Lat: fptr(0), Lng: fptr(180)}}},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRoute(&tt.payload))
		})
	}
}

func TestValidateRouteTrims(t *testing.T) {
	p := routePayload{Name: " Loop ", Waypoints: []waypointPayload{{Name: " A ", Lat: fptr(0), Lng: fptr(0)}}}
	assert.Empty(t, validateRoute(&p))
	assert.Equal(t, "Loop", p.Name)
	assert.Equal(t, "A", p.Waypoints[0].Name)

	in := p.waypointInputs()
	assert.Len(t, in, 1)
	assert.Nil(t, in[0].ID)
}

func TestSafeReturnURL(t *testing.T) {
	assert.Equal(t, "/routes/view/1", safeReturnURL("/routes/view/1"))
	assert.Equal(t, "/", safeReturnURL(""))
	assert.Equal(t, "/", safeReturnURL("//evil.example.com"))
	assert.Equal(t, "/", safeReturnURL("https://evil.example.com"))
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Params = gin.Params{{Key: "route_id", Value: "42"}}
	id, ok := parseID(c, "route_id")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "abc", "-1", "0"} {
		c.Params = gin.Params{{Key: "route_id", Value: bad}}
		_, ok := parseID(c, "route_id")
		assert.False(t, ok, bad)
	}
}
