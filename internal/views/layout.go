package views

//go:generate templ generate

const AppName = "Resource Panel"

// pageTitle suffixes every page title with the app name.
func pageTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}
