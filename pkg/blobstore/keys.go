package blobstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// GeneratedKey は生成物の保存キーです。種別と所有者で名前空間を切り、
// タイムスタンプと短い一意 ID で衝突を避けます。
func GeneratedKey(artifactType domain.ArtifactType, ownerID string) string {
	uniqueID := uuid.New().String()[:8]
	return JoinKey(
		string(artifactType),
		ownerID,
		fmt.Sprintf("%d-%s.png", time.Now().Unix(), uniqueID),
	)
}

// AvatarKey は登場人物アバターの安定キーです。
// パスが固定なので再生成時はそのまま上書きになります。
func AvatarKey(ownerID, characterID string) string {
	return JoinKey(ownerID, characterID, "avatar.png")
}

// SubjectKey はユーザー本人がアップロードした参照写真のキーです。
func SubjectKey(userID string) string {
	return JoinKey("subjects", userID+".png")
}

// CharacterKey は登場人物の参照写真のキーです。所有ユーザー配下に置きます。
func CharacterKey(ownerID, characterID string) string {
	return JoinKey("references", ownerID, characterID+".png")
}
