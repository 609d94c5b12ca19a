package feed

import (
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

const youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"

// ChannelFeedURL builds the channel RSS endpoint.
func ChannelFeedURL(base, channelID string) string {
	return base + "?channel_id=" + url.QueryEscape(channelID)
}

// YouTubeFeedURL is the public feed of a channel.
func YouTubeFeedURL(channelID string) string {
	return ChannelFeedURL(youtubeFeedBase, channelID)
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

func ThumbURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}

// YouTubeAdapter reads channel Atom feeds.
type YouTubeAdapter struct{}

func (YouTubeAdapter) Decode(raw []byte) ([]*gofeed.Item, error) {
	return decode(raw)
}

func (YouTubeAdapter) Extract(item *gofeed.Item) (Entry, bool) {
	if item == nil {
		return Entry{}, false
	}
	id := videoID(item)
	title := strings.TrimSpace(item.Title)
	if id == "" || title == "" {
		return Entry{}, false
	}
	pub, ok := published(item)
	if !ok {
		return Entry{}, false
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = WatchURL(id)
	}
	return Entry{
		PlatformID: id,
		Title:      title,
		Link:       link,
		Published:  pub,
	}, true
}

// videoID prefers the yt:videoId extension, then the yt:video: GUID, then
// the v parameter of the link.
func videoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if vals := yt["videoId"]; len(vals) > 0 && strings.TrimSpace(vals[0].Value) != "" {
			return strings.TrimSpace(vals[0].Value)
		}
	}
	if strings.HasPrefix(item.GUID, "yt:video:") {
		return strings.TrimPrefix(item.GUID, "yt:video:")
	}
	if item.Link != "" {
		if u, err := url.Parse(item.Link); err == nil {
			return u.Query().Get("v")
		}
	}
	return ""
}
