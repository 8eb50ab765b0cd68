package tour

import "errors"

var (
	// ErrUnknownLocation 目录中不存在该地点
	ErrUnknownLocation = errors.New("unknown location")
	// ErrPopupNotFound 媒体热点指向的弹窗不存在
	ErrPopupNotFound = errors.New("popup not found")
)

// 日志事件的 error_kind 取值
const (
	kindAssetLoadFailure = "AssetLoadFailure"
	kindPlaybackBlocked  = "PlaybackBlocked"
	kindMissingDomTarget = "MissingDomTarget"
)
