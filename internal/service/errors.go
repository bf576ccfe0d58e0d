package service

import (
	"errors"

	"github.com/rs/zerolog/log"
)

const (
	MinLimit = 10
	MaxLimit = 100
)

// 校验类错误：不做任何写入，直接把提示返回给用户
var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidLimit        = errors.New("limit must be between 10 and 100")
	ErrSelfVote            = errors.New("you can't vote/unvote for yourself")
	ErrNotMember           = errors.New("user not in server")
	ErrUnknownAction       = errors.New("unknown vote action")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidSettingValue = errors.New("invalid setting value")
	ErrInvalidDelta        = errors.New("amount must be positive")
)

// ErrNotFound 只读查询的对象不存在
var ErrNotFound = errors.New("guild not found")

// PersistenceError 存储层不可用或操作失败
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistErr 在出错的地方记录一次日志并包装，上层不再重复记录
func persistErr(op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("persistence failure")
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation 是否为校验类错误
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidID, ErrInvalidLimit, ErrSelfVote, ErrNotMember,
		ErrUnknownAction, ErrUnknownSetting, ErrInvalidSettingValue, ErrInvalidDelta,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidateLimit 排行榜条数只能是 10 到 100
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}
