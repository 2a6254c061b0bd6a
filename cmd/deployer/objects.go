package main

import (
	"fmt"
	"path"
	"strings"

	"sagemaker-deployer/internal/core/services"
)

// parseObject reads "s3://bucket/key=channel[/file]"
func parseObject(spec string) (services.StageObject, error) {
	src, dst, ok := cutLast(spec, "=")
	if !ok {
		return services.StageObject{}, fmt.Errorf("object %q: want s3://bucket/key=channel[/file]", spec)
	}
	rest, found := strings.CutPrefix(src, "s3://")
	if !found {
		return services.StageObject{}, fmt.Errorf("object %q: source must be an s3:// URI", spec)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return services.StageObject{}, fmt.Errorf("object %q: source needs a bucket and a key", spec)
	}

	channel, file := splitTarget(dst)
	return services.StageObject{
		SourceBucket: bucket,
		SourceKey:    key,
		Channel:      channel,
		FileName:     file,
	}, nil
}

// parseFile reads "path=channel[/file]"
func parseFile(spec string) (services.StageObject, error) {
	src, dst, ok := cutLast(spec, "=")
	if !ok || src == "" {
		return services.StageObject{}, fmt.Errorf("file %q: want path=channel[/file]", spec)
	}
	channel, file := splitTarget(dst)
	return services.StageObject{
		SourcePath: src,
		Channel:    channel,
		FileName:   file,
	}, nil
}

func splitTarget(dst string) (channel, file string) {
	dst = strings.Trim(dst, "/")
	channel, file, _ = strings.Cut(dst, "/")
	if file != "" {
		file = path.Clean(file)
	}
	return channel, file
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
