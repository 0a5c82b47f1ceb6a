package helpers

import (
	"crypto/tls"
	"net"
	"strings"
	"time"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/globalsign/mgo"
)

var (
	mDbSession  *mgo.Session
	mDbDatabase string
)

// ConnectMDB connects to mongodb and stores the session
func ConnectMDB(url string, database string) {
	var err error

	log := cache.GetLogger()
	log.WithField("module", "mdb").Info("Connecting to " + url)

	mgo.SetDebug(false)

	newUrl := strings.TrimSuffix(url, "?ssl=true")
	newUrl = strings.Replace(newUrl, "ssl=true&", "", -1)

	dialInfo, err := mgo.ParseURL(newUrl)
	if err != nil {
		log.WithField("module", "mdb").Error(err.Error())
		panic(err)
	}
	dialInfo.Timeout = 10 * time.Second

	// setup TLS if we use SSL
	if newUrl != url {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = true

		dialInfo.DialServer = func(addr *mgo.ServerAddr) (net.Conn, error) {
			conn, err := tls.Dial("tcp", addr.String(), tlsConfig)
			return conn, err
		}
	}

	mDbSession, err = mgo.DialWithInfo(dialInfo)
	if err != nil {
		log.WithField("module", "mdb").Error(err.Error())
		panic(err)
	}

	mDbSession.SetMode(mgo.Primary, false)
	mDbSession.SetSafe(&mgo.Safe{})
	mDbSession.SetSocketTimeout(30 * time.Second)

	mDbDatabase = database

	log.WithField("module", "mdb").Info("Connected!")
}

// GetMDbSession is a simple getter for the mongodb session.
func GetMDbSession() *mgo.Session {
	return mDbSession
}

// GetMDbDatabase returns the name of the mongodb database
func GetMDbDatabase() string {
	return mDbDatabase
}
