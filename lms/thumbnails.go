package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/s0up4200/lmsctl/xmlwire"
)

func thumbnailPath(activityID int) string {
	return fmt.Sprintf("/activity/%d/thumbnail", activityID)
}

// GetThumbnails lists the thumbnails of type objects under contextNodeID
// and caches each one.
func (c *Client) GetThumbnails(ctx context.Context, objectType string, contextNodeID int) ([]*ThumbnailInfo, error) {
	query := url.Values{}
	query.Set("ContextNodeID", strconv.Itoa(contextNodeID))

	images, err := getList[TrainingImage](ctx, c, "GetThumbnails", "/thumbnails/"+url.PathEscape(objectType), query)
	if err != nil {
		return nil, err
	}

	thumbs := make([]*ThumbnailInfo, 0, len(images))
	for _, img := range images {
		thumb := &ThumbnailInfo{ActivityID: deref(img.ActivityID), Image: img.Image}
		if thumb.ActivityID != 0 {
			remember(c, c.thumbnails, ThumbnailKey{ActivityID: thumb.ActivityID}, thumb)
		}
		thumbs = append(thumbs, thumb)
	}
	return thumbs, nil
}

// GetActivityImage returns an activity's thumbnail, base64 encoded.
func (c *Client) GetActivityImage(ctx context.Context, activityID int) (string, error) {
	const op = "GetActivityImage"
	thumb, err := resolve(ctx, c, c.thumbnails, ThumbnailKey{ActivityID: activityID}, func(ctx context.Context) (*ThumbnailInfo, error) {
		img, err := getOne[TrainingImage](ctx, c, op, thumbnailPath(activityID), nil)
		if err != nil {
			return nil, err
		}
		return &ThumbnailInfo{ActivityID: activityID, Image: img.Image}, nil
	})
	if err != nil {
		return "", err
	}
	return thumb.Image, nil
}

// UploadActivityImage has the service fetch a new thumbnail for an
// activity from thumbnailURL.
func (c *Client) UploadActivityImage(ctx context.Context, activityID int, thumbnailURL string) error {
	const op = "UploadActivityImage"
	_, err := submit[TrainingImage](ctx, c, op, http.MethodPut, thumbnailPath(activityID), nil, xmlwire.NewString(thumbnailURL))
	if err != nil {
		return err
	}
	forget(c, c.thumbnails, ThumbnailKey{ActivityID: activityID})
	return nil
}
