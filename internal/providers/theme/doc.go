// Package theme provides the light and dark token sets handed to hosted apps,
// one palette per persona, including the background wallpaper.
package theme
