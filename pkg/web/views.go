package web

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/tendant/device-trust-demo/pkg/device"
	"github.com/tendant/device-trust-demo/pkg/user"
)

// LoginView is the data for the login page
type LoginView struct {
	Error string
}

// RegisterView is the data for the registration page
type RegisterView struct {
	Error string
}

// RegisterDeviceView is the data for the device challenge page.
// VisitorData round-trips through a hidden form field.
type RegisterDeviceView struct {
	Name        string
	VisitorData string
	Error       string
}

// DeviceView is a trusted device as shown on the dashboard
type DeviceView struct {
	ID            string
	FingerprintID string
	LastUsedAt    time.Time
	RegisteredAt  time.Time
}

// DashboardView is the data for the dashboard page
type DashboardView struct {
	Name          string
	Username      string
	FingerprintID string
	Devices       []DeviceView
	Message       string
}

func newDashboardView(u user.User, d device.Device, devices []device.Device) DashboardView {
	view := DashboardView{Message: "Welcome to the dashboard!"}
	copier.Copy(&view, &u)
	view.FingerprintID = d.FingerprintID

	for _, dev := range devices {
		var dv DeviceView
		copier.Copy(&dv, &dev)
		view.Devices = append(view.Devices, dv)
	}
	return view
}
