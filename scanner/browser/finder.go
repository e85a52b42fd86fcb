package browser

import (
	"os"
	"runtime"
)

var linuxChromes = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
}

// FindChrome on the FS, returns the binary and a temp dir for profiles
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\phishker\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/phishker/"
	case "linux":
		for _, chrome := range linuxChromes {
			if _, err := os.Stat(chrome); err == nil {
				return chrome, "/tmp/phishker/"
			}
		}
		return linuxChromes[0], "/tmp/phishker/"
	}
	return "", "tmp"
}
