package present

// Hydration directives for interactive islands.
const (
	HydrateLoad    = "client:load"
	HydrateIdle    = "client:idle"
	HydrateVisible = "client:visible"
	HydrateMedia   = "client:media"
	HydrateOnly    = "client:only"
)

// RecommendedHydration maps component kinds to their directive.
// "default" is the fallback for anything unlisted.
var RecommendedHydration = map[string]string{
	"button":    HydrateIdle,
	"form":      HydrateVisible,
	"modal":     HydrateIdle,
	"dropdown":  HydrateVisible,
	"accordion": HydrateVisible,
	"tabs":      HydrateVisible,

	"datePicker":     HydrateVisible,
	"richTextEditor": HydrateVisible,
	"chart":          HydrateVisible,
	"map":            HydrateVisible,

	"mainNav":   HydrateLoad,
	"authForms": HydrateLoad,
	"searchBar": HydrateIdle,

	"videoPlayer": HydrateVisible,
	"audioPlayer": HydrateVisible,

	"default": HydrateIdle,
}

// HydrationDirective returns the directive for a component kind.
func HydrationDirective(component string) string {
	if d, ok := RecommendedHydration[component]; ok {
		return d
	}
	return RecommendedHydration["default"]
}
