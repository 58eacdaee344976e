package descriptor

import (
	"regexp"
	"strings"
)

var (
	// imageLinePattern matches a compose service image line with a quoted reference.
	imageLinePattern = regexp.MustCompile(`(?m)^(\s*image:\s*')([^']+)(')`)
	// versionArgPattern matches a VERSION build-argument line.
	versionArgPattern = regexp.MustCompile(`(?m)^(\s*VERSION:\s*)(\S+)[ \t]*$`)
)

// ComposeUpdate is the outcome of the two deployment descriptor substitutions.
// A false flag means the corresponding pattern was not found and the text is
// unchanged in that respect; callers report this as a warning, not a failure,
// since some deployment variants lack one of the two lines.
type ComposeUpdate struct {
	// Text is the descriptor with substitutions applied.
	Text string
	// ImageReplaced reports whether at least one image tag was rewritten.
	ImageReplaced bool
	// VersionReplaced reports whether at least one VERSION value was rewritten.
	VersionReplaced bool
}

// UpdateCompose rewrites a deployment descriptor in memory:
//
//  1. On each `image: 'name:tag'` line whose registry host matches one of the
//     configured domain suffixes, the tag is replaced with imageTag.
//  2. On each `VERSION: value` build-argument line, the value is replaced with
//     versionArg, normalized to carry a leading "v".
//
// Every other byte of the document is preserved.
func UpdateCompose(text string, imageDomains []string, imageTag, versionArg string) ComposeUpdate {
	result := ComposeUpdate{}

	if !strings.HasPrefix(versionArg, "v") {
		versionArg = "v" + versionArg
	}

	result.Text = imageLinePattern.ReplaceAllStringFunc(text, func(line string) string {
		groups := imageLinePattern.FindStringSubmatch(line)

		reference := groups[2]

		lastColon := strings.LastIndex(reference, ":")
		if lastColon <= 0 {
			return line
		}

		name := reference[:lastColon]
		if !imageMatchesDomains(name, imageDomains) {
			return line
		}

		result.ImageReplaced = true

		return groups[1] + name + ":" + imageTag + groups[3]
	})

	if versionArgPattern.MatchString(result.Text) {
		result.Text = versionArgPattern.ReplaceAllString(result.Text, "${1}"+versionArg)
		result.VersionReplaced = true
	}

	return result
}

// imageMatchesDomains reports whether the image's registry host ends in one of
// the configured domain suffixes. An empty list matches every image.
func imageMatchesDomains(name string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}

	host := name
	if slash := strings.Index(name, "/"); slash >= 0 {
		host = name[:slash]
	}

	for _, domain := range domains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}

	return false
}
