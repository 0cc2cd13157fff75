package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	pathFile        = "/file"
	pathFileEncoded = "/fileencoded"
)

// GetFileByExternalID returns the first file carrying externalID.
func (c *Client) GetFileByExternalID(ctx context.Context, externalID string) (*FileInfo, error) {
	query := url.Values{}
	query.Set("cid", externalID)

	files, err := getList[File](ctx, c, "GetFileByExternalID", "/files", query)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("file %q: %w", externalID, ErrNotFound)
	}
	return fileInfo(files[0]), nil
}

// GetFileByUID loads a file by its UID.
func (c *Client) GetFileByUID(ctx context.Context, fileUID string) (*File, error) {
	query := url.Values{}
	query.Set("uid", fileUID)
	return getOne[File](ctx, c, "GetFileByUID", pathFile, query)
}

// GetFiles lists the files under parentID.
func (c *Client) GetFiles(ctx context.Context, parentID int) ([]*FileInfo, error) {
	spec := SimpleQuerySpec{ContextNodeID: &parentID, MaxResults: maxListResults}
	results, err := queryList[File](ctx, c, "GetFiles", "/files", spec)
	if err != nil {
		return nil, err
	}

	files := make([]*FileInfo, len(results))
	for i, f := range results {
		files[i] = fileInfo(f)
	}
	return files, nil
}

func (c *Client) CreateFile(ctx context.Context, f File) (*ServiceResult[File], error) {
	return submit[File](ctx, c, "CreateFile", http.MethodPost, pathFile, nil, f)
}

func (c *Client) CreateFileEncoded(ctx context.Context, f File) (*ServiceResult[File], error) {
	return submit[File](ctx, c, "CreateFileEncoded", http.MethodPost, pathFileEncoded, nil, f)
}

func (c *Client) UpdateFile(ctx context.Context, f File) (*ServiceResult[File], error) {
	return submit[File](ctx, c, "UpdateFile", http.MethodPut, pathFile, nil, f)
}

func (c *Client) UpdateFileEncoded(ctx context.Context, f File) (*ServiceResult[File], error) {
	return submit[File](ctx, c, "UpdateFileEncoded", http.MethodPut, pathFileEncoded, nil, f)
}

// UploadFile has the service fetch a new package for fileID. The result
// carries the file with its new current version.
func (c *Client) UploadFile(ctx context.Context, fileID int, spec UpdatedFile) (*ServiceResult[File], error) {
	endpoint := pathFile + "/" + strconv.Itoa(fileID) + "/upload"
	return submit[File](ctx, c, "UploadFile", http.MethodPut, endpoint, nil, spec)
}
