package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	realtime := "down"
	if a.Feed != nil && a.Feed.Available() {
		realtime = "up"
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "realtime": realtime})
}
