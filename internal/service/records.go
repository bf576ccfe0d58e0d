package service

import (
	"context"
	"errors"

	"NWord_Counter/internal/model"
	"NWord_Counter/internal/repository/mysql"
)

// ensureCommunity 先查再建；并发重复创建由存储层的唯一约束吸收
func ensureCommunity(ctx context.Context, store *mysql.Store, id uint64, name string) error {
	ok, err := store.CommunityExists(ctx, id)
	if err != nil {
		return persistErr("community exists", err)
	}
	if ok {
		return nil
	}
	if err := store.CreateCommunity(ctx, id, name); err != nil {
		return persistErr("create community", err)
	}
	return nil
}

// ensureMember 返回成员记录，不存在时以零计数创建
func ensureMember(ctx context.Context, store *mysql.Store, communityID, userID uint64, name string) (*model.Member, error) {
	m, err := store.FindMember(ctx, communityID, userID)
	if err == nil {
		return m, nil
	}
	if !isMemberNotFound(err) {
		return nil, persistErr("find member", err)
	}
	if err := store.CreateMember(ctx, communityID, userID, name); err != nil {
		return nil, persistErr("create member", err)
	}
	m, err = store.FindMember(ctx, communityID, userID)
	if err != nil {
		return nil, persistErr("find member", err)
	}
	return m, nil
}

func isMemberNotFound(err error) bool {
	return errors.Is(err, mysql.ErrMemberNotFound)
}
