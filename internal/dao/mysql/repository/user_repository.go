package repository

import (
	"lynk_chat_server/internal/model"
	"lynk_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
// 并发注册同名用户时，唯一索引保证至多一条落库，输家拿到 CodeUserExist
func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return errorx.Wrapf(err, errorx.CodeUserExist, "用户名 %s 已被占用", user.Username)
		}
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// FindByUuid 按 uuid 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUsername 按用户名精确查找
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindByUuids 按 uuid 列表批量查找
func (r *userRepository) FindByUuids(uuids []string) ([]model.User, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// SearchByUsernamePrefix 按用户名前缀搜索
func (r *userRepository) SearchByUsernamePrefix(prefix string, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.Where("username LIKE ?", prefix+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, wrapDBErrorf(err, "搜索用户 prefix=%s", prefix)
	}
	return users, nil
}
