package citation

import (
	"fmt"
	"regexp"

	"github.com/richinex/chatrag/model"
)

var messageURL = regexp.MustCompile(`/channels/(\d+|@me)/(\d+)/(\d+)/?$`)

// ParseMessageURL extracts the ids from a ".../channels/{guild}/{channel}/{message}" link.
func ParseMessageURL(url string) (model.MessageRef, error) {
	m := messageURL.FindStringSubmatch(url)
	if m == nil {
		return model.MessageRef{}, fmt.Errorf("not a message link: %q", url)
	}
	return model.MessageRef{GuildID: m[1], ChannelID: m[2], MessageID: m[3]}, nil
}
