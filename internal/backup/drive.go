package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveUploader stores backup files in a single google drive folder.
type DriveUploader struct {
	service *drive.Service
	// shareWith gets reader permission on every created file, when set
	shareWith string
}

var _ Uploader = (*DriveUploader)(nil)

func NewDriveUploader(ctx context.Context, credentialsJson []byte, shareWith string) (*DriveUploader, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, option.WithCredentialsJSON(credentialsJson))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	return &DriveUploader{
		service:   driveService,
		shareWith: shareWith,
	}, nil
}

func (u *DriveUploader) EnsureFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, name)
	folders, err := u.service.
		Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve files: %w", err)
	}

	switch len(folders.Files) {
	case 0:
		log.Printf("backups folder %s not found, creating ...", name)
	case 1:
		return folders.Files[0].Id, nil
	default:
		f := folders.Files[0]
		log.Warnf("attention: found %d backups folders, will take the first one: %s", len(folders.Files), f.Id)
		return f.Id, nil
	}

	created, err := u.service.
		Files.Create(&drive.File{
			Name:     name,
			MimeType: folderMimeType,
		}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create backups folder: %w", err)
	}

	if err := u.share(ctx, created.Id); err != nil {
		return created.Id, err
	}

	log.Printf("new backups folder created: %s", created.Id)
	return created.Id, nil
}

func (u *DriveUploader) ListFiles(ctx context.Context, folderID string) ([]RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", folderID, folderMimeType)
	list, err := u.service.
		Files.List().
		Q(query).
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	files := make([]RemoteFile, 0, len(list.Files))
	for _, f := range list.Files {
		createdAt, err := time.Parse(time.RFC3339, f.CreatedTime)
		if err != nil {
			log.Errorf("error parsing created at for file %s: %s", f.Name, err)
		}
		files = append(files, RemoteFile{ID: f.Id, Name: f.Name, CreatedAt: createdAt})
	}

	return files, nil
}

func (u *DriveUploader) Upload(ctx context.Context, folderID, name string, content []byte) (string, error) {
	file, err := u.service.
		Files.Create(&drive.File{
			Name:     name,
			MimeType: "application/json",
			Parents:  []string{folderID},
		}).
		Fields("id, parents").
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%s: create file: %w", name, err)
	}

	if err := u.share(ctx, file.Id); err != nil {
		return file.Id, fmt.Errorf("%s: %w", name, err)
	}

	return file.Id, nil
}

func (u *DriveUploader) share(ctx context.Context, fileID string) error {
	if u.shareWith == "" {
		return nil
	}

	_, err := u.service.Permissions.
		Create(fileID, &drive.Permission{
			EmailAddress: u.shareWith,
			Type:         "user",
			Role:         "reader",
		}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to create reader permission: %w", err)
	}

	return nil
}
